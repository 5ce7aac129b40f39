package story

// Built-in mission content. Narrative strings are Japanese because the
// simulation targets Japanese-language security trainings.

var builtinComponents = []Component{
	{
		ID:               "sns-recon",
		Name:             "SNS偵察",
		Phase:            PhaseRecon,
		Description:      "ターゲットのSNS投稿から個人情報の手がかりを収集する",
		Difficulty:       DifficultyEasy,
		EstimatedMinutes: 5,
		LearningPoints:   []string{"SNSの個人情報は攻撃に悪用される", "投稿の位置情報・写真にも注意"},
	},
	{
		ID:               "dumpster-diving",
		Name:             "ゴミ漁り",
		Phase:            PhaseRecon,
		Description:      "廃棄書類から組織内部の情報を探す",
		Difficulty:       DifficultyEasy,
		EstimatedMinutes: 5,
		LearningPoints:   []string{"書類はシュレッダーで廃棄する"},
	},
	{
		ID:               "leak-search",
		Name:             "漏洩情報検索",
		Phase:            PhaseRecon,
		Description:      "過去の漏洩データベースから認証情報を探す",
		Difficulty:       DifficultyNormal,
		EstimatedMinutes: 8,
		LearningPoints:   []string{"パスワードの使い回しは漏洩の連鎖を生む"},
	},
	{
		ID:               "phishing-email",
		Name:             "フィッシングメール",
		Phase:            PhaseAccess,
		Description:      "偽装メールでターゲットに認証情報を入力させる",
		Difficulty:       DifficultyNormal,
		EstimatedMinutes: 10,
		LearningPoints:   []string{"送信元アドレスとリンク先を必ず確認する", "緊急性を煽るメールほど疑う"},
	},
	{
		ID:               "password-cracking",
		Name:             "パスワード突破",
		Phase:            PhaseAccess,
		Description:      "収集した手がかりからパスワードを推測して突破する",
		Difficulty:       DifficultyNormal,
		EstimatedMinutes: 10,
		LearningPoints:   []string{"強固なパスワードは最初の防御線", "個人情報由来のパスワードは推測される"},
	},
	{
		ID:               "shoulder-surfing",
		Name:             "ショルダーハック",
		Phase:            PhaseAccess,
		Description:      "肩越しの覗き見で入力中の認証情報を盗む",
		Difficulty:       DifficultyEasy,
		EstimatedMinutes: 5,
		LearningPoints:   []string{"公共の場での画面・キー入力に注意"},
	},
	{
		ID:               "network-intrusion",
		Name:             "ネットワーク侵入",
		Phase:            PhaseLateral,
		Description:      "社内ネットワークを探索し管理者端末へ到達する",
		Difficulty:       DifficultyHard,
		EstimatedMinutes: 15,
		LearningPoints:   []string{"ネットワーク監視は侵入検知に重要", "内部でも最小権限の原則を守る"},
	},
	{
		ID:               "privilege-escalation",
		Name:             "権限昇格",
		Phase:            PhaseLateral,
		Description:      "一般アカウントから管理者権限を奪取する",
		Difficulty:       DifficultyHard,
		EstimatedMinutes: 12,
		LearningPoints:   []string{"管理者権限の共有は攻撃面を広げる"},
	},
	{
		ID:               "ransomware",
		Name:             "ランサムウェア展開",
		Phase:            PhaseObjective,
		Description:      "重要データを暗号化し身代金を要求する",
		Difficulty:       DifficultyHard,
		EstimatedMinutes: 12,
		LearningPoints:   []string{"定期バックアップがランサムウェアの最大の対策"},
	},
	{
		ID:               "data-exfiltration",
		Name:             "データ持ち出し",
		Phase:            PhaseObjective,
		Description:      "機密データを気づかれずに外部へ送信する",
		Difficulty:       DifficultyNormal,
		EstimatedMinutes: 10,
		LearningPoints:   []string{"外向き通信の監視が持ち出し検知の鍵"},
	},
}

var builtinStories = []Definition{
	{
		ID:          "cyber-corp",
		Title:       "サイバーコーポレーション侵入作戦",
		Description: "経理部の田中さんを起点に社内ネットワークを掌握し、ランサムウェアを展開する",
		Difficulty:  DifficultyNormal,
		Context: Context{
			Industry:          "IT",
			TargetOrg:         "サイバーコーポレーション",
			TargetDescription: "中堅IT企業。経理部の田中太郎はSNSに日常を投稿しがち。",
			Objective:         "社内データを暗号化し身代金を要求する",
		},
		Phases: []PhaseDefinition{
			{Phase: PhaseRecon, ComponentPool: []string{"sns-recon"}},
			{Phase: PhaseAccess, ComponentPool: []string{"phishing-email", "password-cracking"}},
			{Phase: PhaseLateral, ComponentPool: []string{"network-intrusion"}},
			{Phase: PhaseObjective, ComponentPool: []string{"ransomware"}},
		},
	},
	{
		ID:          "mirai-bank",
		Title:       "みらい銀行強奪計画",
		Description: "地方銀行のオンラインバンキングを狙い、顧客口座情報を窃取する",
		Difficulty:  DifficultyHard,
		Context: Context{
			Industry:          "金融",
			TargetOrg:         "みらい銀行",
			TargetDescription: "地方銀行。オンラインバンキングを5年前に導入。情報システム部は5名体制。",
			Objective:         "顧客の口座情報を窃取し、不正送金を実行する",
		},
		Phases: []PhaseDefinition{
			{Phase: PhaseRecon, ComponentPool: []string{"leak-search", "dumpster-diving"}},
			{Phase: PhaseAccess, ComponentPool: []string{"phishing-email", "shoulder-surfing"}},
			{Phase: PhaseLateral, ComponentPool: []string{"privilege-escalation", "network-intrusion"}},
			{Phase: PhaseObjective, ComponentPool: []string{"data-exfiltration"}},
		},
	},
}
