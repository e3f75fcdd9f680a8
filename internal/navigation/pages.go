// Package navigation holds the one declarative table mapping pages to the
// capability that unlocks them. Menu rendering and route guarding both
// consult it, so the two can not drift apart.
package navigation

import "strings"

// Page is one entry of the navigation surface. Capability is empty for pages
// every signed-in identity may see; otherwise it names the capability tag a
// non-admin must hold.
type Page struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Capability string `json:"-"`
}

// navbarWorkerLimit caps how many role pages fit the workers' horizontal bar;
// the rest stays reachable through the overflow menu.
const navbarWorkerLimit = 6

// MainPages is the fixed navbar list an admin sees.
var MainPages = []Page{
	{Name: "Home", Path: "/home"},
	{Name: "Job Form", Path: "/main/jobForm"},
	{Name: "Pre-Press", Path: "/pre_press", Capability: "prepress"},
	{Name: "Printing", Path: "/printing", Capability: "printing"},
	{Name: "Pasting", Path: "/pasting", Capability: "pasting"},
	{Name: "Sorting", Path: "/sorting", Capability: "sorting"},
	{Name: "Reports", Path: "/reports"},
	{Name: "Job Status", Path: "/job_status"},
	{Name: "MachineInfo", Path: "/machineinfo", Capability: "machineinfo"},
	{Name: "Admin Panel", Path: "/admin/dashboard"},
}

// AdditionalPages extends the admin overflow menu.
var AdditionalPages = []Page{
	{Name: "Plates", Path: "/plates", Capability: "plates"},
	{Name: "Card Cutting", Path: "/card_cutting", Capability: "card_cutting"},
	{Name: "Varnish", Path: "/varnish", Capability: "varnish"},
	{Name: "Lamination", Path: "/lamination", Capability: "lamination"},
	{Name: "Joint", Path: "/joint", Capability: "joint"},
	{Name: "Die Cutting", Path: "/die_cutting", Capability: "die_cutting"},
	{Name: "Foil", Path: "/foil", Capability: "foil"},
	{Name: "Screen Printing", Path: "/screen_printing", Capability: "screen_printing"},
	{Name: "Embose", Path: "/embose", Capability: "embose"},
	{Name: "Double Tape", Path: "/double_tape", Capability: "double_tape"},
}

var rolePages = map[string]Page{
	"printing":        {Name: "Printing", Path: "/printing", Capability: "printing"},
	"pasting":         {Name: "Pasting", Path: "/pasting", Capability: "pasting"},
	"lamination":      {Name: "Lamination", Path: "/lamination", Capability: "lamination"},
	"prepress":        {Name: "Pre-Press", Path: "/pre_press", Capability: "prepress"},
	"plates":          {Name: "Plates", Path: "/plates", Capability: "plates"},
	"card_cutting":    {Name: "Card Cutting", Path: "/card_cutting", Capability: "card_cutting"},
	"sorting":         {Name: "Sorting", Path: "/sorting", Capability: "sorting"},
	"varnish":         {Name: "Varnish", Path: "/varnish", Capability: "varnish"},
	"joint":           {Name: "Joint", Path: "/joint", Capability: "joint"},
	"die_cutting":     {Name: "Die Cutting", Path: "/die_cutting", Capability: "die_cutting"},
	"foil":            {Name: "Foil", Path: "/foil", Capability: "foil"},
	"screen_printing": {Name: "Screen Printing", Path: "/screen_printing", Capability: "screen_printing"},
	"embose":          {Name: "Embose", Path: "/embose", Capability: "embose"},
	"double_tape":     {Name: "Double Tape", Path: "/double_tape", Capability: "double_tape"},
	"machineinfo":     {Name: "MachineInfo", Path: "/machineinfo", Capability: "machineinfo"},
}

// PageForRole returns the page one capability role unlocks. Roles outside the
// table degrade to a title-cased page named after the role.
func PageForRole(role string) Page {
	if page, ok := rolePages[role]; ok {
		return page
	}
	return Page{Name: titleCase(role), Path: "/" + role, Capability: role}
}

// ForProfile computes the navbar and the full overflow menu for one identity.
func ForProfile(isAdmin bool, roles []string) (navbar, menu []Page) {
	if isAdmin {
		navbar = append(navbar, MainPages...)
		menu = append(menu, MainPages...)
		menu = append(menu, AdditionalPages...)
		return navbar, menu
	}
	menu = append(menu, Page{Name: "Home", Path: "/home"})
	for _, role := range roles {
		menu = append(menu, PageForRole(role))
	}
	if len(menu) > navbarWorkerLimit+1 {
		navbar = menu[:navbarWorkerLimit+1]
	} else {
		navbar = menu
	}
	return navbar, menu
}

// FirstEntitled returns the page a guarded route should redirect a denied
// identity to: the first page its roles unlock, or Home.
func FirstEntitled(roles []string) Page {
	for _, role := range roles {
		if page, ok := rolePages[role]; ok {
			return page
		}
	}
	return Page{Name: "Home", Path: "/home"}
}

func titleCase(role string) string {
	parts := strings.Split(role, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
