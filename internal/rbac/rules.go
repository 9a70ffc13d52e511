package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view-assigned",
		"attempt:start",
		"attempt:submit",
		"attempt:view-own",
		"progress:view-own",
	},
	"instructor": {
		"quiz:create",
		"quiz:view-all",
		"quiz:assign",
		"quiz:delete",
		"question:manage",
		"attempt:view-all",
		"attempt:grade",
		"topic:manage",
		"course:manage",
		"student:list",
		"progress:view-all",
	},
	"admin": {
		"*", // everything
	},
}
