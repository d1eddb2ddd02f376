package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/desertthunder/soundslate/internal/formatter"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/stats"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	var t *template.Template
	funcs := template.FuncMap{
		// renderList executes a layout block by name so pages can iterate layouts.
		"renderList": func(block string, items []models.Item) (template.HTML, error) {
			var buf bytes.Buffer
			if err := t.ExecuteTemplate(&buf, block, items); err != nil {
				return "", err
			}
			return template.HTML(buf.String()), nil
		},
	}

	t, err := template.New("web").Funcs(funcs).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

// LoginPage is the data of login.html.
type LoginPage struct {
	AppName  string
	Error    string
	LoginURL string
	Year     int
}

// NewLoginPage builds the login page, showing errMsg when it is not empty.
func NewLoginPage(errMsg string, now time.Time) LoginPage {
	return LoginPage{AppName: shared.AppName, Error: errMsg, LoginURL: "/login", Year: now.Year()}
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// TabLink switches tabs. Links holds one URL per layout; the page shows the
// one matching the checked view radio so a tab switch keeps the layout.
type TabLink struct {
	Label  string
	URL    string
	Active bool
	Links  []LayoutLink
}

type LayoutLink struct {
	Kind models.Layout
	URL  string
}

// Export is a downloadable PNG of one layout.
type Export struct {
	Filename string
	DataURI  template.URL
}

// Panel is the list drawn in one layout.
type Panel struct {
	Kind    models.Layout
	Label   string
	Block   string
	Checked bool
	Export  *Export
}

// DashboardPage is the data of dashboard.html.
type DashboardPage struct {
	AppName    string
	User       string
	AvatarURL  string
	Filters    stats.Filters
	Heading    string
	Tabs       []TabLink
	TimeRanges []Option
	Limits     []Option
	Panels     []Panel
	Items      []models.Item
	Message    string
	Share      []formatter.ShareTarget
	Year       int
}

// DashboardInput is what a dashboard request fetched.
type DashboardInput struct {
	Filters stats.Filters
	Profile *models.Profile
	List    stats.Result
	AppURL  string
	Now     time.Time
}

// NewDashboard assembles the dashboard. The PNG exports are rendered here
// from in.List; nothing else is fetched.
func NewDashboard(in DashboardInput) (DashboardPage, error) {
	f := in.Filters
	page := DashboardPage{
		AppName: shared.AppName,
		Filters: f,
		Heading: f.Tab.Label(),
		Message: in.List.Message(),
		Share:   formatter.ShareTargets(in.AppURL, f.Tab),
		Year:    in.Now.Year(),
	}

	if in.Profile != nil {
		page.User = in.Profile.Name()
		if len(in.Profile.Images) > 0 {
			page.AvatarURL = in.Profile.Images[0].URL
		}
	}

	for _, tab := range models.Tabs {
		link := TabLink{
			Label:  tab.Label(),
			URL:    "/?" + f.WithTab(tab).Query().Encode(),
			Active: tab == f.Tab,
		}
		for _, l := range models.Layouts {
			link.Links = append(link.Links, LayoutLink{Kind: l, URL: "/?" + f.WithTab(tab).WithLayout(l).Query().Encode()})
		}
		page.Tabs = append(page.Tabs, link)
	}
	for _, r := range models.TimeRanges {
		page.TimeRanges = append(page.TimeRanges, Option{Value: string(r), Label: r.Label(), Selected: r == f.TimeRange})
	}
	for _, n := range models.Limits {
		page.Limits = append(page.Limits, Option{Value: strconv.Itoa(n), Label: fmt.Sprintf("Top %d", n), Selected: n == f.Limit})
	}

	ok := in.List.Status == stats.StatusOK
	if ok {
		page.Items = in.List.Items()
	}

	list := formatter.List{
		Tab:       f.Tab,
		TimeRange: f.TimeRange,
		Owner:     page.User,
		Items:     page.Items,
		Generated: in.Now,
	}
	for _, layout := range formatter.Layouts() {
		panel := Panel{
			Kind:    layout.Kind(),
			Label:   layout.Kind().Label(),
			Block:   layout.Block(),
			Checked: layout.Kind() == f.Layout,
		}
		if ok {
			uri, err := formatter.PNGDataURI(list, layout)
			if err != nil {
				return page, fmt.Errorf("failed to render %s export: %w", layout.Kind(), err)
			}
			panel.Export = &Export{Filename: list.Filename("png"), DataURI: template.URL(uri)}
		}
		page.Panels = append(page.Panels, panel)
	}

	return page, nil
}
