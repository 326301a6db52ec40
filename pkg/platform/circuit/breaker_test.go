package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Breaker Test Suite
// =============================================================================
// Justification for unit tests: the Decos client and the rate limiter both
// depend on the exact threshold and cooldown transitions.

type BreakerSuite struct {
	suite.Suite
	now     time.Time
	breaker *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.breaker = New("decos",
		WithFailureThreshold(3),
		WithSuccessThreshold(2),
		WithCooldown(10*time.Second),
	)
	s.breaker.now = func() time.Time { return s.now }
}

func (s *BreakerSuite) fail(n int) (bool, StateChange) {
	var fallback bool
	var change StateChange
	for range n {
		fallback, change = s.breaker.RecordFailure()
	}
	return fallback, change
}

func (s *BreakerSuite) TestStartsClosed() {
	s.Equal("decos", s.breaker.Name())
	s.Equal(StateClosed, s.breaker.State())
	s.Equal("closed", s.breaker.State().String())
	s.True(s.breaker.Allow())
}

func (s *BreakerSuite) TestOpensOnThreshold() {
	fallback, change := s.fail(2)
	s.False(fallback)
	s.False(change.Opened)
	s.False(s.breaker.IsOpen())

	fallback, change = s.fail(1)
	s.True(fallback)
	s.True(change.Opened)
	s.Equal("open", s.breaker.State().String())
}

func (s *BreakerSuite) TestSuccessWhileClosedResetsFailures() {
	s.fail(2)
	usePrimary, _ := s.breaker.RecordSuccess()
	s.True(usePrimary)

	s.fail(2)
	s.False(s.breaker.IsOpen(), "failure count restarted after the success")
}

func (s *BreakerSuite) TestCooldownGatesTrialCalls() {
	s.fail(3)
	s.False(s.breaker.Allow())

	s.now = s.now.Add(9 * time.Second)
	s.False(s.breaker.Allow())

	s.now = s.now.Add(time.Second)
	s.True(s.breaker.Allow())

	// A failed trial call restarts the cooldown.
	fallback, change := s.breaker.RecordFailure()
	s.True(fallback)
	s.False(change.Opened, "already open")
	s.False(s.breaker.Allow())
}

func (s *BreakerSuite) TestClosesAfterSuccessfulTrialCalls() {
	s.fail(3)

	usePrimary, change := s.breaker.RecordSuccess()
	s.False(usePrimary)
	s.False(change.Closed)

	usePrimary, change = s.breaker.RecordSuccess()
	s.True(usePrimary)
	s.True(change.Closed)
	s.False(s.breaker.IsOpen())

	_, change = s.fail(2)
	s.False(change.Opened, "closing resets the failure count")
}

func (s *BreakerSuite) TestFailureInterruptsRecovery() {
	s.fail(3)
	s.breaker.RecordSuccess()
	s.breaker.RecordFailure()

	usePrimary, _ := s.breaker.RecordSuccess()
	s.False(usePrimary, "success streak restarted")
	s.True(s.breaker.IsOpen())
}

func (s *BreakerSuite) TestReset() {
	s.fail(3)
	s.breaker.Reset()
	s.False(s.breaker.IsOpen())
	s.True(s.breaker.Allow())
}

func TestNew_IgnoresNonPositiveOptions(t *testing.T) {
	b := New("x", WithFailureThreshold(0), WithSuccessThreshold(-1), WithCooldown(0))
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 3, b.successThreshold)
	assert.Equal(t, 30*time.Second, b.cooldown)
}
