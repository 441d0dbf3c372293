package notifications

import (
	"testing"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleTableRendersWithCanonicalFields(t *testing.T) {
	fields := events.Payload{
		MRFID:       "MRF-000001",
		Amount:      decimal.NewFromInt(250000),
		RequesterID: uuid.New(),
	}.Fields()

	for i, rule := range RuleTable {
		require.Truef(t, rule.Event.IsValid(), "rule %d event %q", i, rule.Event)
		require.Truef(t, rule.Priority.IsValid(), "rule %d priority %q", i, rule.Priority)
		require.NotEmptyf(t, rule.Roles, "rule %d has no roles", i)
		if rule.Stage != "" {
			require.Truef(t, rule.Stage.IsValid(), "rule %d stage %q", i, rule.Stage)
		}
		for _, role := range rule.Roles {
			assert.Truef(t, role.IsValid() || role == enums.RoleRequester, "rule %d role %q", i, role)
			assert.NotEqualf(t, enums.RoleEmployee, role, "rule %d routes to employees", i)
		}
		_, err := render(rule, fields)
		assert.NoErrorf(t, err, "rule %d (%s)", i, rule.Event)
	}
}

func TestRuleTableCoversEveryEvent(t *testing.T) {
	for _, eventType := range enums.EventTypes() {
		assert.NotEmptyf(t, rulesFor(RuleTable, eventType), "no rule for %s", eventType)
	}
}

func TestRulesForKeepsTableIndex(t *testing.T) {
	matched := rulesFor(RuleTable, enums.EventMRFSentToChairman)
	require.Len(t, matched, 2)
	for _, ir := range matched {
		assert.Equal(t, RuleTable[ir.index], ir.rule)
	}
	assert.Less(t, matched[0].index, matched[1].index)
	assert.Equal(t, enums.NotificationPriorityHigh, matched[0].rule.Priority)
	assert.Equal(t, []enums.Role{enums.RoleChairman}, matched[0].rule.Roles)
}

func TestRulesForEventMatchesReminderStage(t *testing.T) {
	reminder := func(stage enums.MRFStage) events.Event {
		return events.New(enums.EventMRFPendingReviewReminder, uuid.Nil, time.Now(), events.Payload{MRFID: "MRF-000009", Stage: stage.String()})
	}

	exec := rulesForEvent(RuleTable, reminder(enums.MRFStagePendingExecutiveReview))
	require.Len(t, exec, 1)
	assert.Equal(t, []enums.Role{enums.RoleExecutive}, exec[0].rule.Roles)

	chair := rulesForEvent(RuleTable, reminder(enums.MRFStagePendingChairmanReview))
	require.Len(t, chair, 1)
	assert.Equal(t, []enums.Role{enums.RoleChairman}, chair[0].rule.Roles)

	assert.Empty(t, rulesForEvent(RuleTable, reminder(enums.MRFStageApprovedForPO)))
	assert.Len(t, rulesForEvent(RuleTable, events.New(enums.EventMRFSentToChairman, uuid.Nil, time.Now(), events.Payload{})), 2)
}

func TestRenderRejectsUnknownField(t *testing.T) {
	_, err := render(Rule{Title: "{nope}", Message: "ok"}, map[string]string{})
	require.Error(t, err)

	out, err := render(Rule{Title: "Hi {name}", Message: "{name}!", Link: "/x/{name}"}, map[string]string{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada", out.Title)
	assert.Equal(t, "Ada!", out.Message)
	require.NotNil(t, out.Link)
	assert.Equal(t, "/x/Ada", *out.Link)
}
