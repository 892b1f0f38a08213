package simulate

import "time"

// Icon identifies the visual variant a client should render for a step.
// The set is closed; clients resolve it through IconName at the rendering
// boundary instead of passing free-form strings around.
type Icon int

const (
	IconSearch Icon = iota
	IconScale
	IconServer
	IconCheckCircle
)

var iconNames = map[Icon]string{
	IconSearch:      "Search",
	IconScale:       "Scale",
	IconServer:      "Server",
	IconCheckCircle: "CheckCircle",
}

// IconName resolves an icon identifier to its wire name.
func IconName(i Icon) string {
	if name, ok := iconNames[i]; ok {
		return name
	}
	return "Search"
}

func (i Icon) String() string { return IconName(i) }

func (i Icon) MarshalJSON() ([]byte, error) {
	return []byte(`"` + IconName(i) + `"`), nil
}

// Step is one stage of the simulated matchmaking sequence. The catalog is
// static; steps are only ever indexed, never created at runtime.
type Step struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"duration"`
	Icon        Icon          `json:"icon"`
}

// Server is a candidate game server with a simulated ping.
type Server struct {
	Name     string `json:"name"`
	Ping     int    `json:"ping"`
	Location string `json:"location"`
}

const (
	StepSearching = "searching"
	StepBalancing = "balancing"
	StepServer    = "server"
	StepReady     = "ready"
)

// Steps is the ordered matchmaking phase catalog.
var Steps = []Step{
	{
		ID:          StepSearching,
		Title:       "Finding players",
		Description: "Looking for players with a similar rating...",
		Duration:    3000 * time.Millisecond,
		Icon:        IconSearch,
	},
	{
		ID:          StepBalancing,
		Title:       "Balancing teams",
		Description: "Building balanced teams...",
		Duration:    2000 * time.Millisecond,
		Icon:        IconScale,
	},
	{
		ID:          StepServer,
		Title:       "Selecting server",
		Description: "Picking the server with the lowest ping...",
		Duration:    2000 * time.Millisecond,
		Icon:        IconServer,
	},
	{
		ID:          StepReady,
		Title:       "Match found!",
		Description: "Preparing the game...",
		Duration:    1000 * time.Millisecond,
		Icon:        IconCheckCircle,
	},
}

// Servers is the fixed server catalog. The engine always picks the first
// entry, which has the lowest ping.
var Servers = []Server{
	{Name: "Moscow", Ping: 15, Location: "RU"},
	{Name: "Saint Petersburg", Ping: 25, Location: "RU"},
	{Name: "Yekaterinburg", Ping: 45, Location: "RU"},
}
