package billstatus

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrMissingIdentity is returned when a file yields no usable
// congress/type/number triple from any extraction strategy.
var ErrMissingIdentity = errors.New("billstatus: missing bill identity")

// Record is the parsed content of one BILLSTATUS file.
type Record struct {
	Congress   int
	BillType   string
	BillNumber int

	// Chamber is derived from the bill type: "house" for h*, "senate"
	// for s*, empty otherwise.
	Chamber string

	Title          string
	IntroducedDate *time.Time

	LatestActionText string
	LatestActionTime *time.Time

	SponsorBioguide string
	SponsorFullName string

	Actions    []Action
	Cosponsors []Cosponsor

	// SourcePath identifies where the record came from, typically
	// relative to the project root.
	SourcePath string
}

// Action is a single legislative action on a bill.
type Action struct {
	Time  *time.Time
	Actor string
	Text  string
	Code  string
}

// Cosponsor is a single cosponsor entry.
type Cosponsor struct {
	Bioguide   string
	FullName   string
	Party      string
	State      string
	Joined     *time.Time
	IsOriginal *bool
}

// node is a generic XML element. encoding/xml already separates the
// namespace from the local name, so namespace variants of the same
// element compare equal by Local.
type node struct {
	XMLName  xml.Name
	Text     string `xml:",chardata"`
	Children []node `xml:",any"`
}

// walk visits n and all descendants in document order.
func (n *node) walk(fn func(*node) bool) bool {
	if !fn(n) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].walk(fn) {
			return false
		}
	}
	return true
}

func (n *node) name() string {
	return strings.ToLower(n.XMLName.Local)
}

func (n *node) text() string {
	return strings.TrimSpace(n.Text)
}

// ParseFile parses a BILLSTATUS XML file. SourcePath is set to path;
// callers that track paths relative to a root should rewrite it.
func ParseFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("billstatus: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse parses BILLSTATUS XML from r. sourcePath is used for the
// filename and directory identity fallbacks and recorded on the Record.
func Parse(r io.Reader, sourcePath string) (*Record, error) {
	var root node
	dec := xml.NewDecoder(r)
	// Older fdsys files are not always valid UTF-8 strict XML.
	dec.Strict = false
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("billstatus: parse %s: %w", sourcePath, err)
	}

	congress, billType, billNumber := identityFromXML(&root)
	if congress == 0 || billType == "" || billNumber == 0 {
		c, t, n := identityFromFilename(sourcePath)
		congress, billType, billNumber = fill(congress, c), fillStr(billType, t), fill(billNumber, n)
	}
	if congress == 0 || billType == "" || billNumber == 0 {
		c, t, n := identityFromDirs(sourcePath)
		congress, billType, billNumber = fill(congress, c), fillStr(billType, t), fill(billNumber, n)
	}
	if congress == 0 || billType == "" || billNumber == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingIdentity, sourcePath)
	}

	billType = strings.ToLower(billType)

	rec := &Record{
		Congress:   congress,
		BillType:   billType,
		BillNumber: billNumber,
		Chamber:    chamber(billType),
		Title:      shortestTitle(&root),
		SourcePath: sourcePath,
	}

	root.walk(func(n *node) bool {
		if strings.HasSuffix(n.name(), "introduceddate") && n.text() != "" {
			rec.IntroducedDate = parseTime(n.text())
			return false
		}
		return true
	})

	rec.SponsorBioguide, rec.SponsorFullName = sponsor(&root)
	rec.Cosponsors = cosponsors(&root)
	rec.Actions = actions(&root)

	if latest := latestAction(rec.Actions); latest != nil {
		rec.LatestActionTime = latest.Time
		rec.LatestActionText = latest.Text
	}

	return rec, nil
}

func fill(have, fallback int) int {
	if have != 0 {
		return have
	}
	return fallback
}

func fillStr(have, fallback string) string {
	if have != "" {
		return have
	}
	return fallback
}

var nonDigits = regexp.MustCompile(`\D`)

func digits(s string) int {
	d := nonDigits.ReplaceAllString(s, "")
	if d == "" {
		return 0
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0
	}
	return n
}

// identityFromXML pulls congress/type/number out of the document itself.
// Element names vary across BILLSTATUS generations (congress vs
// billCongress, type vs billType), so suffix matching is used throughout.
func identityFromXML(root *node) (congress int, billType string, billNumber int) {
	root.walk(func(n *node) bool {
		name := n.name()
		text := n.text()
		if text == "" {
			return true
		}
		if congress == 0 && (name == "congress" || strings.HasSuffix(name, "congress")) {
			congress = digits(text)
		}
		if billType == "" && (name == "type" || name == "billtype" || strings.HasSuffix(name, "billtype")) {
			billType = strings.ToLower(text)
		}
		if billNumber == 0 && (name == "number" || name == "billnumber" || strings.HasSuffix(name, "billnumber")) {
			billNumber = digits(text)
		}
		return congress == 0 || billType == "" || billNumber == 0
	})
	return congress, billType, billNumber
}

var filenameIdentity = regexp.MustCompile(`(?i)BILLSTATUS-(\d+)([a-z]+)(\d+)\.xml$`)

func identityFromFilename(path string) (int, string, int) {
	m := filenameIdentity.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, "", 0
	}
	congress, _ := strconv.Atoi(m[1])
	number, _ := strconv.Atoi(m[3])
	return congress, strings.ToLower(m[2]), number
}

var billIDPattern = regexp.MustCompile(`^([a-z]+)(\d+)$`)

// identityFromDirs recovers identity from the legacy directory layout:
// .../<congress>/bills/<type>/<type><number>/fdsys_billstatus.xml
func identityFromDirs(path string) (int, string, int) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i := len(parts) - 1; i >= 1; i-- {
		p := strings.ToLower(parts[i])
		if p != "bills" && p != "billstatus" {
			continue
		}
		congress, err := strconv.Atoi(parts[i-1])
		if err != nil {
			continue
		}
		if i+2 >= len(parts) {
			continue
		}
		billType := strings.ToLower(parts[i+1])
		m := billIDPattern.FindStringSubmatch(strings.ToLower(parts[i+2]))
		if m == nil {
			continue
		}
		number, _ := strconv.Atoi(m[2])
		return congress, billType, number
	}
	return 0, "", 0
}

func parseTime(s string) *time.Time {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil
	}
	return &t
}

var titleNames = map[string]bool{
	"title":              true,
	"officialtitle":      true,
	"titlewithoutnumber": true,
}

// shortestTitle collects every title-ish element and returns the
// shortest, which in practice is the official short title.
func shortestTitle(root *node) string {
	var best string
	root.walk(func(n *node) bool {
		name := n.name()
		if !titleNames[name] && !hasAnySuffix(name, titleNames) {
			return true
		}
		text := n.text()
		if text != "" && (best == "" || len(text) < len(best)) {
			best = text
		}
		return true
	})
	return best
}

func hasAnySuffix(name string, names map[string]bool) bool {
	for n := range names {
		if strings.HasSuffix(name, n) {
			return true
		}
	}
	return false
}

func sponsor(root *node) (bioguide, fullName string) {
	root.walk(func(n *node) bool {
		name := n.name()
		if strings.Contains(name, "cosponsor") {
			// cosponsor elements also end in "sponsor(s)".
			return true
		}
		if !strings.HasSuffix(name, "sponsor") && !strings.HasSuffix(name, "sponsors") {
			return true
		}
		n.walk(func(kid *node) bool {
			kn := kid.name()
			text := kid.text()
			if text == "" {
				return true
			}
			if strings.HasSuffix(kn, "bioguideid") {
				bioguide = text
			} else if (strings.HasSuffix(kn, "fullname") || strings.HasSuffix(kn, "name")) && fullName == "" {
				fullName = text
			}
			return true
		})
		return bioguide == "" && fullName == ""
	})
	return bioguide, fullName
}

func cosponsors(root *node) []Cosponsor {
	var out []Cosponsor
	root.walk(func(n *node) bool {
		if !strings.HasSuffix(n.name(), "cosponsors") {
			return true
		}
		for i := range n.Children {
			item := &n.Children[i]
			iname := item.name()
			if !strings.HasSuffix(iname, "cosponsor") && iname != "item" {
				continue
			}
			var cs Cosponsor
			item.walk(func(kid *node) bool {
				kn := kid.name()
				text := kid.text()
				if text == "" {
					return true
				}
				switch {
				case strings.HasSuffix(kn, "bioguideid"):
					cs.Bioguide = text
				case strings.HasSuffix(kn, "fullname"):
					cs.FullName = text
				case strings.HasSuffix(kn, "party"):
					cs.Party = text
				case strings.HasSuffix(kn, "state"):
					cs.State = text
				case strings.HasSuffix(kn, "sponsorshipdate"):
					cs.Joined = parseTime(text)
				case strings.HasSuffix(kn, "isoriginalcosponsor"):
					v := text == "true" || text == "True" || text == "1" || text == "yes"
					cs.IsOriginal = &v
				}
				return true
			})
			if cs.Bioguide != "" {
				out = append(out, cs)
			}
		}
		return false
	})
	return out
}

func actions(root *node) []Action {
	var out []Action
	root.walk(func(n *node) bool {
		if !strings.HasSuffix(n.name(), "actions") {
			return true
		}
		for i := range n.Children {
			item := &n.Children[i]
			iname := item.name()
			if !strings.HasSuffix(iname, "action") && iname != "item" {
				continue
			}
			var a Action
			// Only direct children carry action fields; nested
			// committees/links have their own text elements.
			for j := range item.Children {
				kid := &item.Children[j]
				kn := kid.name()
				text := kid.text()
				switch {
				case strings.HasSuffix(kn, "actiondatetime") || strings.HasSuffix(kn, "actiondate"):
					a.Time = parseTime(text)
				case strings.HasSuffix(kn, "text") && text != "":
					a.Text = text
				case strings.HasSuffix(kn, "actors") && text != "":
					a.Actor = text
				case strings.HasSuffix(kn, "actioncode") && text != "":
					a.Code = text
				}
			}
			if a.Time != nil || a.Text != "" {
				out = append(out, a)
			}
		}
		return false
	})
	return out
}

// latestAction returns the action with the greatest timestamp. Actions
// without a timestamp sort first; among equal timestamps the last in
// document order wins.
func latestAction(actions []Action) *Action {
	if len(actions) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(actions); i++ {
		if !actionTime(actions[i]).Before(actionTime(actions[best])) {
			best = i
		}
	}
	return &actions[best]
}

func actionTime(a Action) time.Time {
	if a.Time == nil {
		return time.Time{}
	}
	return *a.Time
}

func chamber(billType string) string {
	switch {
	case strings.HasPrefix(billType, "h"):
		return "house"
	case strings.HasPrefix(billType, "s"):
		return "senate"
	default:
		return ""
	}
}
