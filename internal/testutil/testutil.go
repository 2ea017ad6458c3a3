package testutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ErrSimulated возвращают фейковые миры и хранилища, когда тест проверяет
// путь обработки отказа.
var ErrSimulated = errors.New("simulated failure")

// ContextWithTimeout возвращает context теста с ограничением d.
// Отменяется не позже завершения теста.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), d)
	t.Cleanup(cancel)
	return ctx
}

// ContextWithCancel возвращает context теста и функцию отмены, например для
// остановки тикера до конца теста.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	return ctx, cancel
}
