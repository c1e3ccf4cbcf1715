package sync

// State 同期処理の状態
type State string

const (
	// Idle 未認証
	Idle State = "idle"
	// Authenticating 認証中
	Authenticating State = "authenticating"
	// Syncing 同期中
	Syncing State = "syncing"
	// Done 同期完了
	Done State = "done"
	// Failed 同期失敗（終端状態）
	Failed State = "failed"
)

// ValidTransitions 状態遷移の許可リスト
var ValidTransitions = map[State][]State{
	Idle:           {Authenticating},
	Authenticating: {Syncing, Failed},
	Syncing:        {Done, Failed},
	Done:           {Syncing, Failed},
	Failed:         {},
}

// CanTransition 遷移可否を判定
func CanTransition(from, to State) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
