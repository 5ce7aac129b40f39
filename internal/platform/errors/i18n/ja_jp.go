package i18n

var jaJPCatalog = &Catalog{
	locale: "ja-JP",
	messages: map[Code]string{
		CodeInvalidRequest: "リクエストの形式が不正です",

		// Story and catalog errors
		CodeStoryNotFound:          "不明なストーリーです: {{.StoryID}}",
		CodeStoryEmptyPlan:         "ミッションには少なくとも1つのフェーズが必要です",
		CodeComponentNotFound:      "不明なコンポーネントです: {{.ComponentID}}",
		CodeComponentPhaseMismatch: "コンポーネント {{.ComponentID}} はフェーズ {{.Phase}} に属していません",

		// Session errors
		CodeSessionNotFound:              "セッションが見つかりません。新しいミッションを開始してください。",
		CodeSessionCompleted:             "このミッションはすでに完了しています",
		CodeSessionPhaseAlreadyCompleted: "フェーズ {{.Slot}} はすでに完了しています",
		CodeSessionInvalidSlot:           "フェーズ番号 {{.Slot}} が範囲外です",

		// Scoring errors
		CodeScoreBreakdownInvalid: "スコア内訳が不正です",
		CodeScorerNotFound:        "コンポーネント {{.ComponentID}} の採点は未対応です",

		// Stealth errors
		CodeStealthNegativeSpend: "ステルス消費量に負の値は指定できません",

		// Action errors
		CodeActionUnknownType:   "不明なアクションです: {{.Action}}",
		CodeActionUnknownTarget: "不明なターゲットです: {{.Target}}",
		CodeActionLockedOut:     "アカウントがロックされました",

		// Report errors
		CodeReportNotReady: "レポートは全フェーズ完了後に閲覧できます",

		// Storage errors
		CodeNotFound: "リソースが見つかりません",

		// Filter errors
		CodeFilterInvalid: "フィルター式が不正です",
	},
}
