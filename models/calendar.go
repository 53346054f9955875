package models

// Account is a connected provider account (Google, iCloud, Linear, ...).
// Fields mirror the Morgen v3 API; unknown upstream fields are ignored on
// decode so API additions never break us.
type Account struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name,omitempty"`
	ProviderUserDisplayName string   `json:"providerUserDisplayName,omitempty"`
	PreferredEmail          string   `json:"preferredEmail,omitempty"`
	Emails                  []string `json:"emails,omitempty"`
	IntegrationID           string   `json:"integrationId,omitempty"`
	IntegrationGroups       []string `json:"integrationGroups,omitempty"`
	ProviderID              string   `json:"providerId,omitempty"`
	ProviderAccountID       string   `json:"providerAccountId,omitempty"`
}

// HasGroup reports whether the account declares an integration capability
// such as "calendars" or "tasks".
func (a Account) HasGroup(group string) bool {
	for _, g := range a.IntegrationGroups {
		if g == group {
			return true
		}
	}
	return false
}

// Calendar belongs to exactly one account. MyRights is left untyped
// because providers return either a bool or a structured rights object.
type Calendar struct {
	ID                string `json:"id"`
	CalendarID        string `json:"calendarId,omitempty"`
	AccountID         string `json:"accountId,omitempty"`
	Name              string `json:"name,omitempty"`
	Color             string `json:"color,omitempty"`
	Writable          *bool  `json:"writable,omitempty"`
	IsActiveByDefault *bool  `json:"isActiveByDefault,omitempty"`
	MyRights          any    `json:"myRights,omitempty"`
}

// EffectiveID returns the calendar identifier, preferring ID over the
// legacy CalendarID field some providers populate instead.
func (c Calendar) EffectiveID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.CalendarID
}

// IsWritable derives writability from whichever rights shape the provider
// sent: the plain Writable flag, or a JSCalendar myRights object with a
// "mayUpdateItems" key.
func (c Calendar) IsWritable() bool {
	if c.Writable != nil {
		return *c.Writable
	}
	if rights, ok := c.MyRights.(map[string]any); ok {
		if v, ok := rights["mayUpdateItems"].(bool); ok {
			return v
		}
	}
	return false
}

// Participant is one entry in an event's JSCalendar participants map.
type Participant struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// Location is one entry in an event's JSCalendar locations map.
type Location struct {
	Name string `json:"name,omitempty"`
}

// Event is a calendar event. Start is a local-naive ISO-8601 string and
// Duration an ISO-8601 duration ("PT30M"); both are kept as strings since
// the API round-trips them verbatim.
type Event struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title,omitempty"`
	Description     string                 `json:"description,omitempty"`
	Start           string                 `json:"start,omitempty"`
	End             string                 `json:"end,omitempty"`
	Duration        string                 `json:"duration,omitempty"`
	CalendarID      string                 `json:"calendarId,omitempty"`
	AccountID       string                 `json:"accountId,omitempty"`
	Participants    map[string]Participant `json:"participants,omitempty"`
	Locations       map[string]Location    `json:"locations,omitempty"`
	ShowAs          string                 `json:"showAs,omitempty"`
	ShowWithoutTime bool                   `json:"showWithoutTime,omitempty"`
	TimeZone        string                 `json:"timeZone,omitempty"`
	Metadata        map[string]any         `json:"morgen.so:metadata,omitempty"`
}

// FreeSlot is an available interval computed by the availability engine.
// It is derived, never stored.
type FreeSlot struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}
