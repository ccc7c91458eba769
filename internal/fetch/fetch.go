package fetch

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	UserAgent = "ea-events-cli/1.0 (github.com/pfrederiksen/ea-events)"
	Timeout   = 30 * time.Second
)

// Page maps a labeled field name to its already-extracted raw text.
type Page map[string]string

// Field names exposed on an event detail page and its signup page.
const (
	FieldNameLocation = "namelocation"
	FieldDateTime     = "datetime"
	FieldStatus       = "eventstatus"
	FieldMemberStatus = "signupstatus"
	FieldSignupBefore = "signupbefore"
	FieldCancelBefore = "cancelbefore"
	FieldHosts        = "hosts"
	FieldDuration     = "duration"
	FieldAttire       = "attire"
	FieldVenueCost    = "venuecost"
	FieldEventCost    = "eventcost"
	FieldEventTax     = "eventtax"
	FieldDescription  = "eventdescription"
	FieldAddress      = "venueaddress"
	FieldSitename     = "sitename"
	FieldCapacity     = "memberlimit"
	FieldCredit       = "eventcredit"
)

// elementIDs maps Page field names to the site's element IDs.
var elementIDs = map[string]string{
	FieldNameLocation: "contentMain_eventnamelocation",
	FieldDateTime:     "contentMain_datetime",
	FieldStatus:       "contentMain_eventstatus",
	FieldMemberStatus: "contentMain_signupstatus",
	FieldSignupBefore: "contentMain_signupbefore",
	FieldCancelBefore: "contentMain_cancelbefore",
	FieldHosts:        "contentMain_hosts",
	FieldDuration:     "contentMain_duration",
	FieldAttire:       "contentMain_attire",
	FieldVenueCost:    "contentMain_venuecost",
	FieldEventCost:    "contentMain_eventcost",
	FieldEventTax:     "contentMain_eventtax",
	FieldDescription:  "contentMain_eventdescription",
	FieldAddress:      "contentMain_venueaddress",
	FieldSitename:     "contentMain_sitename",
	FieldCapacity:     "contentMain_memberlimit",
	FieldCredit:       "contentMain_eventcredit",
}

const signupLinkID = "contentMain_lnkSignup"

// Fetcher enumerates event links and supplies per-field raw text.
type Fetcher interface {
	// EventLinks collects detail-page links from the calendar for the
	// current month plus monthsAhead further months.
	EventLinks(monthsAhead int) ([]string, error)

	// EventPage fetches one detail page's labeled fields.
	EventPage(link string) (Page, error)

	// SignupPage follows the detail page's signup link and fetches the
	// labeled fields there (capacity, event credit).
	SignupPage(link string) (Page, error)
}

// Session is a logged-in Fetcher against the live site. Pages are fetched one
// at a time over a single cookie-carrying client.
type Session struct {
	base   string
	client *http.Client
	now    func() time.Time
}

// NewSession posts a login and returns a session carrying the auth cookies.
// The login payload is rebuilt from the logon form's inputs so hidden
// viewstate fields round-trip.
func NewSession(baseURL, username, password string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = Timeout
	rc.HTTPClient.Jar = jar

	s := &Session{
		base:   strings.TrimRight(baseURL, "/"),
		client: rc.StandardClient(),
		now:    time.Now,
	}

	payload, err := s.loginPayload(username, password)
	if err != nil {
		return nil, fmt.Errorf("building login payload: %w", err)
	}

	resp, err := s.client.PostForm(s.base+"/logon.aspx", payload)
	if err != nil {
		return nil, fmt.Errorf("posting login: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	return s, nil
}

// loginPayload scrapes the logon form and fills in credentials; every other
// input keeps its server-rendered value.
func (s *Session) loginPayload(username, password string) (url.Values, error) {
	doc, err := s.document(s.base + "/logon.aspx")
	if err != nil {
		return nil, err
	}

	payload := url.Values{}
	doc.Find("form input").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		id, _ := sel.Attr("id")
		switch {
		case strings.Contains(id, "username"):
			payload.Set(name, username)
		case strings.Contains(id, "password"):
			payload.Set(name, password)
		default:
			value, _ := sel.Attr("value")
			payload.Set(name, value)
		}
	})
	return payload, nil
}

func (s *Session) document(pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// EventLinks collects calendar detail links for the current month and
// monthsAhead further months, deduplicated in first-seen order.
func (s *Session) EventLinks(monthsAhead int) ([]string, error) {
	seen := make(map[string]bool)
	var links []string

	for i := 0; i <= monthsAhead; i++ {
		year, month := monthOffset(s.now(), i)
		pageURL := fmt.Sprintf("%s/calendar.aspx?month=%d/1/%d", s.base, month, year)

		doc, err := s.document(pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar for %d/%d: %w", month, year, err)
		}

		doc.Find("a.calevent").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || href == "" {
				return
			}
			abs := s.absoluteURL(href)
			if !seen[abs] {
				seen[abs] = true
				links = append(links, abs)
			}
		})
	}
	return links, nil
}

// EventPage fetches and extracts one detail page.
func (s *Session) EventPage(link string) (Page, error) {
	doc, err := s.document(link)
	if err != nil {
		return nil, err
	}
	return ExtractPage(doc), nil
}

// SignupPage follows the detail page's signup link and extracts that page.
func (s *Session) SignupPage(link string) (Page, error) {
	doc, err := s.document(link)
	if err != nil {
		return nil, err
	}

	href, ok := doc.Find("#" + signupLinkID).Attr("href")
	if !ok || href == "" {
		return nil, fmt.Errorf("no signup link on %s", link)
	}

	sdoc, err := s.document(s.absoluteURL(href))
	if err != nil {
		return nil, err
	}
	return ExtractPage(sdoc), nil
}

// ExtractPage pulls the labeled field text out of a detail or signup page.
// The site separates name/location and host lines with <br>; the extraction
// converts those to newlines first so multi-line fields keep their structure.
func ExtractPage(doc *goquery.Document) Page {
	doc.Find("br").ReplaceWithHtml("\n")

	page := Page{}
	for field, id := range elementIDs {
		sel := doc.Find("#" + id)
		if sel.Length() == 0 {
			continue
		}
		page[field] = strings.TrimSpace(sel.Text())
	}
	return page
}

func (s *Session) absoluteURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(s.base + "/")
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}

// monthOffset walks n months forward from now, wrapping the year the same way
// the calendar's month selector does.
func monthOffset(now time.Time, n int) (year, month int) {
	year, month = now.Year(), int(now.Month())
	month += n
	if month > 12 {
		month %= 12
		year++
	}
	return year, month
}
