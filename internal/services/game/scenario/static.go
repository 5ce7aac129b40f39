package scenario

import (
	"context"
	"math/rand"

	"github.com/louisbranch/killchain/internal/services/game/domain/rank"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

// Static serves built-in content. It never fails, so it backs the
// generative provider and also runs standalone for offline play.
type Static struct{}

// NewStatic returns the built-in content provider.
func NewStatic() *Static { return &Static{} }

// GenerateScenario returns the canned briefing for the component, or a
// generic one assembled from the component definition.
func (s *Static) GenerateScenario(_ context.Context, req Request) (Data, error) {
	if d, ok := staticBriefings[req.Component.ID]; ok {
		out := d
		out.Situation = fillSituation(d.Situation, req.Context)
		return out, nil
	}
	return Data{
		Title:     req.Component.Name,
		Briefing:  req.Component.Description,
		Situation: req.Context.TargetOrg + "を標的とした「" + req.Component.Name + "」を実行する。" + req.Context.Objective + "のための重要なステップだ。",
	}, nil
}

// GenerateStoryContext picks one of the preset mission contexts. The
// hint selects by industry when it matches; otherwise the pick is
// deterministic for a given hint.
func (s *Static) GenerateStoryContext(_ context.Context, hint string) (story.Context, error) {
	if hint != "" {
		for _, ctx := range presetContexts {
			if ctx.Industry == hint {
				return ctx, nil
			}
		}
		seed := int64(0)
		for _, r := range hint {
			seed = seed*31 + int64(r)
		}
		rng := rand.New(rand.NewSource(seed))
		return presetContexts[rng.Intn(len(presetContexts))], nil
	}
	return presetContexts[0], nil
}

// GenerateNarrative returns the rank-tiered closing paragraph.
func (s *Static) GenerateNarrative(_ context.Context, req NarrativeRequest) (string, error) {
	org := req.Context.TargetOrg
	switch req.Rank {
	case rank.S:
		return org + "のシステムは完全に掌握された。セキュリティチームが異変に気づいた時には、すべてが終わっていた。痕跡はほとんど残っていない。", nil
	case rank.A:
		return org + "への攻撃は成功に終わった。翌朝、情報システム部は不審なログを発見するが、時すでに遅し。", nil
	case rank.B:
		return org + "のセキュリティチームは侵入の途中で異常を検知した。攻撃は成功したものの、フォレンジック調査で手口の多くが明らかになるだろう。", nil
	case rank.C:
		return org + "の防御は予想以上に機能した。目的は部分的にしか達成できず、侵入経路の大半が特定された。", nil
	default:
		return org + "への攻撃はほぼ検知され、封じ込められた。この組織の多層防御から学ぶべきことは多い。", nil
	}
}

// presetContexts are the built-in mission settings.
var presetContexts = []story.Context{
	{
		Industry:          "金融",
		TargetOrg:         "みらい銀行",
		TargetDescription: "地方銀行。オンラインバンキングを5年前に導入したが、セキュリティ教育は年1回のみ。",
		Objective:         "顧客の口座情報を窃取し、不正送金を実行する",
	},
	{
		Industry:          "製造",
		TargetOrg:         "東洋精密工業",
		TargetDescription: "精密部品メーカー。設計図面など機密データを多数保有。工場系ネットワークと事務系が部分的に接続されている。",
		Objective:         "設計図面を窃取し、競合他社に売却する",
	},
	{
		Industry:          "教育",
		TargetOrg:         "さくら大学",
		TargetDescription: "私立大学。学生2万人の個人情報を保有。学部ごとにシステム管理がばらばら。",
		Objective:         "学生の個人情報データベースを暗号化し、身代金を要求する",
	},
	{
		Industry:          "小売",
		TargetOrg:         "フレッシュマート",
		TargetDescription: "食品スーパーチェーン。ポイントカード会員100万人。POSシステムは外部委託で管理。",
		Objective:         "会員のクレジットカード情報を窃取する",
	},
}

func fillSituation(template string, ctx story.Context) string {
	if template == "" {
		return ""
	}
	return ctx.TargetOrg + "。" + template
}

var staticBriefings = map[string]Data{
	"sns-recon": {
		Title:     "SNS偵察",
		Briefing:  "ターゲット社員のSNSアカウントを特定した。投稿から攻撃の手がかりを集めろ。",
		Situation: "経理担当者のアカウントは鍵がかかっていない。日常の投稿に、パスワードの種や社内事情が紛れている。",
		Hints:     []string{"ペットの名前や記念日はパスワードによく使われる", "オフィスの写真に写り込んだ備品や画面に注目"},
	},
	"dumpster-diving": {
		Title:     "ゴミ漁り",
		Briefing:  "オフィスビルの廃棄物置き場に侵入した。シュレッダーを通っていない書類を探せ。",
		Situation: "廃棄書類の山の中に、組織図や内線表、書き損じのメモが混ざっている。",
		Hints:     []string{"内線表は内部になりすます電話攻撃の材料になる"},
	},
	"leak-search": {
		Title:     "漏洩情報検索",
		Briefing:  "過去の大規模漏洩データベースを検索し、ターゲット組織のドメインの認証情報を探せ。",
		Situation: "3年前の外部サービス漏洩に、このドメインのメールアドレスが複数含まれていた。",
		Hints:     []string{"使い回されたパスワードは今も生きている可能性がある"},
	},
	"phishing-email": {
		Title:     "フィッシングメール",
		Briefing:  "収集した情報をもとに、ターゲットが思わず開くメールを組み立てろ。送信元、件名、本文、リンクの4要素が鍵だ。",
		Situation: "ターゲットは月末の請求処理に追われている。取引先を装った請求書メールなら疑われにくい。",
		Hints:     []string{"実在の取引先名を使うと信憑性が上がる", "リンクのドメインは一文字違いが定石"},
	},
	"password-cracking": {
		Title:     "パスワード突破",
		Briefing:  "ログイン画面に到達した。収集した手がかりからパスワードを推測しろ。試行回数には限りがある。",
		Situation: "5回失敗するとアカウントがロックされ、管理者に通知が飛ぶ。手がかりを整理してから入力しろ。",
		Hints:     []string{"SNSで見つけた情報を組み合わせろ", "誕生日や西暦の付加はよくあるパターン"},
	},
	"shoulder-surfing": {
		Title:     "ショルダーハック",
		Briefing:  "ターゲットがカフェで作業している。視線に注意しながら、入力される認証情報を盗み見ろ。",
		Situation: "窓際の席でノートPCを開いている。背後の席が空いている。",
	},
	"network-intrusion": {
		Title:     "ネットワーク侵入",
		Briefing:  "社内ネットワークへの足がかりを得た。スキャンで構成を把握し、管理者端末まで到達しろ。",
		Situation: "スキャンもアクセスも痕跡を残す。監視システムの検知レベルが上がれば、防御側が動き出す。",
		Hints:     []string{"むやみなスキャンは検知を早める", "管理者権限が最終目標への鍵になる"},
	},
	"privilege-escalation": {
		Title:     "権限昇格",
		Briefing:  "一般ユーザーの権限では目的のデータに届かない。設定の穴を突いて管理者権限を奪取しろ。",
		Situation: "共有サーバーに、権限設定の甘い管理スクリプトが置かれている。",
	},
	"ransomware": {
		Title:     "ランサムウェア展開",
		Briefing:  "最終段階だ。重要データを暗号化し、身代金を要求する。バックアップを先に潰すかどうかが分かれ目になる。",
		Situation: "高速の暗号化は確実だが監視に引っかかりやすい。慎重な暗号化は時間がかかるが静かだ。",
		Hints:     []string{"バックアップが生きていれば身代金は払われない"},
	},
	"data-exfiltration": {
		Title:     "データ持ち出し",
		Briefing:  "目的のデータを特定した。外向き通信の監視に引っかからないよう、分割して持ち出せ。",
		Situation: "通常業務のトラフィックに紛れ込ませるのが定石だ。",
	},
}
