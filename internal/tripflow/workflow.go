package tripflow

import (
	"context"
	"fmt"

	"github.com/limitless/adventures/internal/flight"
)

// State はワークフローの状態を表す。
type State string

const (
	StateIdle      State = "idle"       // 初期状態
	StateSearching State = "searching"  // 検索リクエスト送信中
	StateResults   State = "results"    // 検索結果の表示中
	StateError     State = "error"      // 検索失敗
	StateSaving    State = "saving"     // 保存リクエスト送信中
	StateSaved     State = "saved"      // 保存完了
	StateSaveError State = "save_error" // 保存失敗（結果は保持したまま再試行可能）
)

// API はワークフローが必要とするバックエンド操作のインターフェース。
// Clientの部分集合として定義する。
type API interface {
	Me(ctx context.Context) (*MeStatus, error)
	SearchFlights(ctx context.Context, input SearchInput) (*flight.SearchResult, error)
	SaveTrip(ctx context.Context, input SaveTripInput) (string, error)
}

// Workflow はフライト検索から保存までの状態遷移を管理する。
// 並行利用は想定しない（1ワークフロー = 1ユーザー操作系列）。
type Workflow struct {
	api API

	state     State
	lastInput SearchInput
	result    *flight.SearchResult
	lastErr   error
}

// NewWorkflow はidle状態のWorkflowを生成する。
func NewWorkflow(api API) *Workflow {
	return &Workflow{
		api:   api,
		state: StateIdle,
	}
}

// State は現在の状態を返す。
func (w *Workflow) State() State {
	return w.state
}

// Result は直近の検索結果を返す。検索未実施の場合はnil。
func (w *Workflow) Result() *flight.SearchResult {
	return w.result
}

// Err は直近のエラーを返す。
func (w *Workflow) Err() error {
	return w.lastErr
}

// Search はフライト検索を実行する。
// ローカルバリデーションに失敗した場合はリクエストを送信せず、
// 状態遷移も行わない。検索失敗時はerror状態に遷移する。
func (w *Workflow) Search(ctx context.Context, input SearchInput) (*flight.SearchResult, error) {
	if input.Origin == "" || input.Destination == "" || input.DepartDate == "" {
		return nil, fmt.Errorf("origin, destination and departure date are required")
	}
	if input.Adults < 1 {
		input.Adults = 1
	}

	w.state = StateSearching
	w.lastInput = input

	result, err := w.api.SearchFlights(ctx, input)
	if err != nil {
		w.state = StateError
		w.lastErr = err
		return nil, err
	}

	w.state = StateResults
	w.result = result
	w.lastErr = nil
	return result, nil
}

// SaveCheapest は直近の検索結果の最安オファーをトリップとして保存する。
// 結果表示中（またはsave-errorからの再試行）でのみ実行でき、
// ログイン済みであることを保存前に確認する。
// 保存失敗はsave_error状態に遷移するが、結果は保持され再試行できる。
func (w *Workflow) SaveCheapest(ctx context.Context) (string, error) {
	if w.state != StateResults && w.state != StateSaveError {
		return "", fmt.Errorf("no search results to save (state: %s)", w.state)
	}
	if w.result == nil || !w.result.Found || w.result.Cheapest == nil {
		return "", fmt.Errorf("no offers available to save")
	}

	// ログイン状態の確認
	me, err := w.api.Me(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check login status: %w", err)
	}
	if !me.Authenticated {
		return "", fmt.Errorf("login required to save a trip")
	}

	w.state = StateSaving

	cheapest := w.result.Cheapest
	input := SaveTripInput{
		Origin:        w.lastInput.Origin,
		Destination:   w.lastInput.Destination,
		DepartDate:    w.lastInput.DepartDate,
		Adults:        w.lastInput.Adults,
		CheapestPrice: &cheapest.Price,
		Currency:      &cheapest.Currency,
		Airline:       &cheapest.Airline,
		Stops:         &cheapest.Stops,
	}
	if w.lastInput.ReturnDate != "" {
		returnDate := w.lastInput.ReturnDate
		input.ReturnDate = &returnDate
	}

	tripID, err := w.api.SaveTrip(ctx, input)
	if err != nil {
		// 結果は保持したまま再試行可能な状態に戻す
		w.state = StateSaveError
		w.lastErr = err
		return "", err
	}

	w.state = StateSaved
	w.lastErr = nil
	return tripID, nil
}
