package protocol

// Domain identifies a family of bridge actions and, for registry-backed
// domains, the kind of component a handle refers to.
type Domain string

const (
	DomainSidebar     Domain = "sidebar"
	DomainFileBrowser Domain = "fileBrowser"
	DomainSplitView   Domain = "splitView"
	DomainMenu        Domain = "menu"
	DomainDrag        Domain = "drag"
	DomainPreview     Domain = "preview"
	DomainEvents      Domain = "events"
	DomainClipboard   Domain = "clipboard"
	DomainWindow      Domain = "window"
)

// IDPrefix returns the prefix used when generating identifiers for the domain.
func (d Domain) IDPrefix() string {
	switch d {
	case DomainDrag:
		return "drag"
	case "":
		return "component"
	default:
		return string(d)
	}
}

// TeardownRank orders eviction during window close. Lower ranks are
// released first: transient overlays, then leaf widgets, then containers.
func (d Domain) TeardownRank() int {
	switch d {
	case DomainDrag, DomainPreview:
		return 0
	case DomainMenu:
		return 1
	case DomainSidebar, DomainFileBrowser:
		return 2
	case DomainSplitView:
		return 3
	default:
		return 2
	}
}

// Component domains recognised by the registry.
var ComponentDomains = []Domain{
	DomainSidebar,
	DomainFileBrowser,
	DomainSplitView,
	DomainMenu,
	DomainDrag,
	DomainPreview,
}

// IsComponent reports whether the domain owns registry handles.
func (d Domain) IsComponent() bool {
	for _, c := range ComponentDomains {
		if c == d {
			return true
		}
	}
	return false
}
