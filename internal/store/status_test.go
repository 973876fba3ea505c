package store

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMemoryStatusRoundTrip(t *testing.T) {
    s := NewMemoryStatus()
    ctx := context.Background()

    _, ok, err := s.Get(ctx, "missing")
    require.NoError(t, err)
    assert.False(t, ok)

    now := time.Now()
    st := Status{
        State:    StatePending,
        ModelID:  1,
        Prompt:   "a red fox",
        Start:    &now,
    }
    require.NoError(t, s.Set(ctx, "req-1", st))

    got, ok, err := s.Get(ctx, "req-1")
    require.NoError(t, err)
    require.True(t, ok)
    assert.Equal(t, StatePending, got.State)
    assert.Equal(t, "a red fox", got.Prompt)

    st.State = StateFailed
    st.FailureKind = "rate_limited"
    require.NoError(t, s.Set(ctx, "req-1", st))

    got, ok, err = s.Get(ctx, "req-1")
    require.NoError(t, err)
    require.True(t, ok)
    assert.Equal(t, StateFailed, got.State)
    assert.Equal(t, "rate_limited", got.FailureKind)
}

func TestMemoryStatusConcurrentWriters(t *testing.T) {
    s := NewMemoryStatus()
    done := make(chan struct{})
    for i := 0; i < 8; i++ {
        go func() {
            defer func() { done <- struct{}{} }()
            for j := 0; j < 100; j++ {
                _ = s.Set(context.Background(), "shared", Status{State: StateCompleted})
                _, _, _ = s.Get(context.Background(), "shared")
            }
        }()
    }
    for i := 0; i < 8; i++ {
        <-done
    }
}
