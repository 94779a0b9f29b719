package rbac

// Permission names checked by the HTTP layer.
const (
	PermGradeRun       = "grade:run"
	PermQuestionCreate = "question:create"
	PermQuestionView   = "question:view"
	PermQuestionKey    = "question:view-key"
	PermResultViewAll  = "result:view-all"
	PermResultViewOwn  = "result:view-own"
	PermPracticeCheck  = "practice:check"
	PermEventsRead     = "events:read"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		PermQuestionView,
		PermResultViewOwn,
		PermPracticeCheck,
	},
	"teacher": {
		"question:*",
		PermGradeRun,
		PermResultViewAll,
		PermPracticeCheck,
		PermEventsRead,
	},
	"admin": {
		"*", // everything
	},
}
