package permissions

// PermissionDefinition describes a single, specific permission
type PermissionDefinition struct {
	Key         string `json:"key"`         // unique key, e.g., "media.manage"
	Name        string `json:"name"`        // friendly name, e.g., "Manage Media"
	Description string `json:"description"` // detailed description of what the permission allows
}

const (
	// ManageMedia gates every folder and media mutation as well as the
	// library listings. All REST routes require it.
	ManageMedia = "media.manage"
)

// DefinedPermissions holds all statically defined permissions
var DefinedPermissions = []PermissionDefinition{
	{
		Key:         ManageMedia,
		Name:        "Manage Media",
		Description: "Allows organizing the media library: folders, assignments and uploads.",
	},
}

// IsValidPermissionKey checks if a given key is a defined permission
func IsValidPermissionKey(key string) bool {
	for _, p := range DefinedPermissions {
		if p.Key == key {
			return true
		}
	}
	return false
}
