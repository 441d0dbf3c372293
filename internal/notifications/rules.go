package notifications

import (
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/events"
)

// Rule maps one event type to the roles that hear about it and the templates
// rendered for them. Templates reference payload fields as {field}. A rule with
// a Stage only applies to events whose payload carries that stage.
type Rule struct {
	Event    enums.EventType
	Stage    enums.MRFStage
	Roles    []enums.Role
	Title    string
	Message  string
	Link     string
	Priority enums.NotificationPriority
}

const (
	mrfLink   = "/material-requests/{mrfId}"
	poLink    = "/purchase-orders/{poNumber}"
	grnLink   = "/goods-received-notes/{grnId}"
	roleReq   = enums.RoleRequester
	high      = enums.NotificationPriorityHigh
	medium    = enums.NotificationPriorityMedium
	low       = enums.NotificationPriorityLow
	roleExec  = enums.RoleExecutive
	roleChair = enums.RoleChairman
	roleProc  = enums.RoleProcurement
	roleChain = enums.RoleSupplyChain
	roleFin   = enums.RoleFinance
	roleWare  = enums.RoleWarehouse
	roleLog   = enums.RoleLogistics
)

// RuleTable is the complete routing table. Its order is the notification
// insertion order and a rule's index identifies it for deduplication, so new
// rules are appended.
var RuleTable = []Rule{
	{Event: enums.EventMRFSubmitted, Roles: []enums.Role{roleExec}, Priority: high, Link: mrfLink,
		Title:   "New material request awaiting review",
		Message: "{requesterName} ({department}) submitted {mrfId}: {mrfTitle}, estimated at {amount}. Urgency: {urgency}."},
	{Event: enums.EventMRFSubmitted, Roles: []enums.Role{roleReq}, Priority: low, Link: mrfLink,
		Title:   "Material request submitted",
		Message: "Your request {mrfId} was submitted for executive review."},

	{Event: enums.EventMRFSentToChairman, Roles: []enums.Role{roleChair}, Priority: high, Link: mrfLink,
		Title:   "High-value request {mrfId} needs your approval",
		Message: "{mrfId} for {amount} passed executive review and awaits your decision."},
	{Event: enums.EventMRFSentToChairman, Roles: []enums.Role{roleReq}, Priority: medium, Link: mrfLink,
		Title:   "Request escalated to the chairman",
		Message: "Your request {mrfId} was approved by executive review and sent to the chairman."},

	{Event: enums.EventMRFApprovedByExecutive, Roles: []enums.Role{roleProc}, Priority: high, Link: mrfLink,
		Title:   "Request {mrfId} ready for a purchase order",
		Message: "{mrfId}: {mrfTitle} was approved for {amount}. Generate a purchase order."},
	{Event: enums.EventMRFApprovedByExecutive, Roles: []enums.Role{roleReq}, Priority: medium, Link: mrfLink,
		Title:   "Material request approved",
		Message: "Your request {mrfId} was approved by {actorName}."},

	{Event: enums.EventMRFApprovedByChairman, Roles: []enums.Role{roleProc}, Priority: high, Link: mrfLink,
		Title:   "Request {mrfId} ready for a purchase order",
		Message: "{mrfId}: {mrfTitle} was approved by the chairman for {amount}. Generate a purchase order."},
	{Event: enums.EventMRFApprovedByChairman, Roles: []enums.Role{roleReq}, Priority: medium, Link: mrfLink,
		Title:   "Material request approved",
		Message: "Your request {mrfId} was approved by the chairman."},

	{Event: enums.EventMRFRejectedByExecutive, Roles: []enums.Role{roleReq}, Priority: high, Link: mrfLink,
		Title:   "Material request rejected",
		Message: "Your request {mrfId} was rejected at executive review: {reason}"},
	{Event: enums.EventMRFRejectedByChairman, Roles: []enums.Role{roleReq}, Priority: high, Link: mrfLink,
		Title:   "Material request rejected",
		Message: "Your request {mrfId} was rejected by the chairman: {reason}"},

	{Event: enums.EventMRFPaymentProcessing, Roles: []enums.Role{roleReq}, Priority: low, Link: mrfLink,
		Title:   "Payment in progress",
		Message: "Payment for {mrfId} is being processed."},
	{Event: enums.EventMRFPaymentCompleted, Roles: []enums.Role{roleReq}, Priority: medium, Link: mrfLink,
		Title:   "Payment completed",
		Message: "Payment of {amount} for {mrfId} is complete."},
	{Event: enums.EventMRFPaymentCompleted, Roles: []enums.Role{roleProc}, Priority: low, Link: mrfLink,
		Title:   "Payment completed",
		Message: "Payment of {amount} for {mrfId} is complete."},

	{Event: enums.EventMRFPendingReviewReminder, Stage: enums.MRFStagePendingExecutiveReview, Roles: []enums.Role{roleExec}, Priority: medium, Link: mrfLink,
		Title:   "Request {mrfId} is still waiting",
		Message: "{mrfId}: {mrfTitle} from {requesterName} has been waiting for executive review."},

	{Event: enums.EventPOGenerated, Roles: []enums.Role{roleProc}, Priority: low, Link: poLink,
		Title:   "Purchase order {poNumber} issued",
		Message: "{poNumber} for {mrfId} was sent to vendors: {vendor}."},
	{Event: enums.EventPOGenerated, Roles: []enums.Role{roleReq}, Priority: low, Link: mrfLink,
		Title:   "Purchase order issued",
		Message: "A purchase order was issued for your request {mrfId}."},

	{Event: enums.EventPOSentToSupplyChain, Roles: []enums.Role{roleChain}, Priority: high, Link: poLink,
		Title:   "Purchase order awaiting signature",
		Message: "{poNumber} for {mrfId} ({amount}) needs your signature."},

	{Event: enums.EventPOSigned, Roles: []enums.Role{roleProc}, Priority: medium, Link: poLink,
		Title:   "Purchase order signed",
		Message: "{poNumber} was signed by {actorName}."},
	{Event: enums.EventPOSentToFinance, Roles: []enums.Role{roleFin}, Priority: high, Link: poLink,
		Title:   "Purchase order ready for payment",
		Message: "{poNumber} for {mrfId} ({amount}) was signed and sent to finance."},
	{Event: enums.EventPOSentToFinance, Roles: []enums.Role{roleReq}, Priority: low, Link: mrfLink,
		Title:   "Request awaiting payment",
		Message: "The purchase order for {mrfId} was signed and sent to finance."},

	{Event: enums.EventPORejectedBySupplyChain, Roles: []enums.Role{roleProc}, Priority: high, Link: poLink,
		Title:   "Purchase order sent back",
		Message: "{poNumber} for {mrfId} was returned by supply chain: {reason}"},

	{Event: enums.EventGRNCreated, Roles: []enums.Role{roleWare, roleLog}, Priority: high, Link: grnLink,
		Title:   "Goods received, inspection needed",
		Message: "{grnId} from {vendor} against {poNumber} awaits inspection."},
	{Event: enums.EventGRNInspected, Roles: []enums.Role{roleProc}, Priority: low, Link: grnLink,
		Title:   "Goods inspected",
		Message: "{grnId} from {vendor} was inspected by {actorName}."},
	{Event: enums.EventGRNSentToFinance, Roles: []enums.Role{roleFin}, Priority: high, Link: grnLink,
		Title:   "Goods received note ready for payment",
		Message: "{grnId} from {vendor} for {amount} awaits payment processing."},
	{Event: enums.EventPaymentProcessing, Roles: []enums.Role{roleProc}, Priority: low, Link: grnLink,
		Title:   "Payment processing",
		Message: "Payment of {amount} for {grnId} is being processed."},
	{Event: enums.EventPaymentCompleted, Roles: []enums.Role{roleProc, roleFin}, Priority: medium, Link: grnLink,
		Title:   "Payment completed",
		Message: "Payment of {amount} to {vendor} for {grnId} is complete."},
	{Event: enums.EventGRNRejected, Roles: []enums.Role{roleWare, roleProc}, Priority: high, Link: grnLink,
		Title:   "Goods received note rejected",
		Message: "{grnId} from {vendor} was rejected: {reason}"},

	{Event: enums.EventMRFPendingReviewReminder, Stage: enums.MRFStagePendingChairmanReview, Roles: []enums.Role{roleChair}, Priority: medium, Link: mrfLink,
		Title:   "Request {mrfId} is still waiting",
		Message: "{mrfId}: {mrfTitle} for {amount} has been waiting for your decision."},
}

type indexedRule struct {
	index int
	rule  Rule
}

// rulesFor returns the rules matching eventType in table order.
func rulesFor(table []Rule, eventType enums.EventType) []indexedRule {
	var out []indexedRule
	for i, rule := range table {
		if rule.Event == eventType {
			out = append(out, indexedRule{index: i, rule: rule})
		}
	}
	return out
}

// rulesForEvent narrows rulesFor to the rules whose stage condition holds.
func rulesForEvent(table []Rule, evt events.Event) []indexedRule {
	matched := rulesFor(table, evt.Type)
	out := matched[:0]
	for _, ir := range matched {
		if ir.rule.Stage == "" || ir.rule.Stage.String() == evt.Payload.Stage {
			out = append(out, ir)
		}
	}
	return out
}
