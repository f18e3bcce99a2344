package rbac

// Default policy, keyed by the canonical role category derived from the
// launch claims. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"assignment:view",
		"submission:create",
		"submission:view-own",
	},
	"instructor": {
		"assignment:view",
		"assignment:edit",
		"submission:view-own",
		"submission:view-all",
		"submission:grade",
		"deeplink:create",
	},
	"admin": {
		"*", // everything
	},
}
