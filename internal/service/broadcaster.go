package service

// Event types pushed to project watchers
const (
	EventApplicabilityUpdated = "applicability_updated"
	EventCatalogReloaded      = "catalog_reloaded"
	EventProjectDeleted       = "project_deleted"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToProject(projectID string, msgType string, payload interface{})
	BroadcastToAll(msgType string, payload interface{})
	DisconnectProject(projectID string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToProject(string, string, interface{}) {}
func (nopBroadcaster) BroadcastToAll(string, interface{})             {}
func (nopBroadcaster) DisconnectProject(string)                       {}
