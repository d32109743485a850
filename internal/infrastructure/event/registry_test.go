package event

import (
	"testing"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed and wildcard handlers", func(t *testing.T) {
		r := NewHandlerRegistry()
		typed := newTestHandler()
		wildcard := newTestHandler()
		r.Register(typed, ledger.EventTypeWorkAdded, ledger.EventTypeExpenseAdded)
		r.Register(wildcard)

		assert.Equal(t, []shared.EventHandler{typed, wildcard}, r.GetHandlers(ledger.EventTypeWorkAdded))
		assert.Equal(t, []shared.EventHandler{wildcard}, r.GetHandlers(ledger.EventTypePaymentCreated))
		assert.Equal(t, []string{ledger.EventTypeExpenseAdded, ledger.EventTypeWorkAdded}, r.EventTypes())
		assert.Equal(t, 2, r.Len())
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, ledger.EventTypeWorkAdded)
		r.Register(h, ledger.EventTypeWorkAdded)
		r.Register(h)
		r.Register(h)

		assert.Len(t, r.GetHandlers(ledger.EventTypeWorkAdded), 2)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("unregister removes every subscription", func(t *testing.T) {
		r := NewHandlerRegistry()
		h1 := newTestHandler()
		h2 := newTestHandler()
		r.Register(h1, ledger.EventTypeWorkAdded, ledger.EventTypeExpenseAdded)
		r.Register(h1)
		r.Register(h2, ledger.EventTypeWorkAdded)

		r.Unregister(h1)

		assert.Equal(t, []shared.EventHandler{h2}, r.GetHandlers(ledger.EventTypeWorkAdded))
		assert.Empty(t, r.GetHandlers(ledger.EventTypeExpenseAdded))
		assert.Equal(t, []string{ledger.EventTypeWorkAdded}, r.EventTypes())
	})
}
