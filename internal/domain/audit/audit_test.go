package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeframeStart(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), TimeframeStart("day", now))
	assert.Equal(t, now.Add(-7*24*time.Hour), TimeframeStart("week", now))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), TimeframeStart("month", now))

	// Anything unrecognized falls back to month.
	assert.Equal(t, TimeframeStart("month", now), TimeframeStart("", now))
	assert.Equal(t, TimeframeStart("month", now), TimeframeStart("quarter", now))
}

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE 1=1", query)
	assert.Empty(t, args)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args = buildBaseQuery("SELECT COUNT(1)", Filter{
		ActorID: "u-1",
		Action:  "payroll.approve",
		From:    from,
	})
	assert.Contains(t, query, "actor_id::text = $1")
	assert.Contains(t, query, "action = $2")
	assert.Contains(t, query, "created_at >= $3")
	assert.Equal(t, []any{"u-1", "payroll.approve", from}, args)
}
