//go:generate go run go.uber.org/mock/mockgen -source=completer.go -destination=../mocks/mock_completer.go -package=mocks
package assist

import "context"

// Completer is the external completion service as the session sees it.
// The lobby HTTP client implements it against POST /chat.
type Completer interface {
	Complete(ctx context.Context, userID, roomID, prompt string) (string, error)
}
