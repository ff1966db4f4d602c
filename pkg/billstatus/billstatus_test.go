package billstatus

import (
	"strings"
	"testing"
	"time"
)

const modernXML = `<?xml version="1.0" encoding="UTF-8"?>
<billStatus>
  <bill>
    <congress>117</congress>
    <type>HR</type>
    <number>1</number>
    <introducedDate>2021-01-04</introducedDate>
    <titles>
      <item>
        <title>For the People Act of 2021</title>
      </item>
      <item>
        <title>To expand Americans' access to the ballot box, reduce the influence of big money in politics, and strengthen ethics rules for public servants, and for other purposes.</title>
      </item>
    </titles>
    <sponsors>
      <item>
        <bioguideId>S001168</bioguideId>
        <fullName>Rep. Sarbanes, John P. [D-MD-3]</fullName>
      </item>
    </sponsors>
    <cosponsors>
      <item>
        <bioguideId>N000147</bioguideId>
        <fullName>Del. Norton, Eleanor Holmes [D-DC-At Large]</fullName>
        <party>D</party>
        <state>DC</state>
        <sponsorshipDate>2021-01-04</sponsorshipDate>
        <isOriginalCosponsor>true</isOriginalCosponsor>
      </item>
      <item>
        <bioguideId>R000616</bioguideId>
        <sponsorshipDate>2021-02-11</sponsorshipDate>
        <isOriginalCosponsor>false</isOriginalCosponsor>
      </item>
    </cosponsors>
    <actions>
      <item>
        <actionDate>2021-01-04</actionDate>
        <text>Introduced in House</text>
        <actionCode>Intro-H</actionCode>
      </item>
      <item>
        <actionDate>2021-03-03</actionDate>
        <text>Passed/agreed to in House</text>
        <actionCode>8000</actionCode>
      </item>
    </actions>
  </bill>
</billStatus>`

func TestParseModern(t *testing.T) {
	rec, err := Parse(strings.NewReader(modernXML), "data/govinfo/BILLSTATUS/117/hr/BILLSTATUS-117hr1.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if rec.Congress != 117 || rec.BillType != "hr" || rec.BillNumber != 1 {
		t.Errorf("identity = %d/%s/%d, want 117/hr/1", rec.Congress, rec.BillType, rec.BillNumber)
	}
	if rec.Chamber != "house" {
		t.Errorf("chamber = %q, want house", rec.Chamber)
	}
	if rec.Title != "For the People Act of 2021" {
		t.Errorf("expected shortest title, got %q", rec.Title)
	}
	if rec.IntroducedDate == nil || rec.IntroducedDate.Format("2006-01-02") != "2021-01-04" {
		t.Errorf("introduced date = %v, want 2021-01-04", rec.IntroducedDate)
	}
	if rec.SponsorBioguide != "S001168" {
		t.Errorf("sponsor bioguide = %q, want S001168", rec.SponsorBioguide)
	}
	if rec.SponsorFullName != "Rep. Sarbanes, John P. [D-MD-3]" {
		t.Errorf("sponsor full name = %q", rec.SponsorFullName)
	}

	if len(rec.Cosponsors) != 2 {
		t.Fatalf("expected 2 cosponsors, got %d", len(rec.Cosponsors))
	}
	cs := rec.Cosponsors[0]
	if cs.Bioguide != "N000147" || cs.Party != "D" || cs.State != "DC" {
		t.Errorf("cosponsor[0] = %+v", cs)
	}
	if cs.IsOriginal == nil || !*cs.IsOriginal {
		t.Error("cosponsor[0] should be original")
	}
	if rec.Cosponsors[1].IsOriginal == nil || *rec.Cosponsors[1].IsOriginal {
		t.Error("cosponsor[1] should not be original")
	}

	if len(rec.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(rec.Actions))
	}
	if rec.LatestActionText != "Passed/agreed to in House" {
		t.Errorf("latest action = %q", rec.LatestActionText)
	}
	if rec.LatestActionTime == nil || rec.LatestActionTime.Format("2006-01-02") != "2021-03-03" {
		t.Errorf("latest action time = %v", rec.LatestActionTime)
	}
}

func TestParseNamespaced(t *testing.T) {
	xmlDoc := `<?xml version="1.0"?>
<ns:billStatus xmlns:ns="http://www.gpo.gov/fdsys">
  <ns:bill>
    <ns:congress>110</ns:congress>
    <ns:billType>S</ns:billType>
    <ns:billNumber>2284</ns:billNumber>
  </ns:bill>
</ns:billStatus>`

	rec, err := Parse(strings.NewReader(xmlDoc), "some/path.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Congress != 110 || rec.BillType != "s" || rec.BillNumber != 2284 {
		t.Errorf("identity = %d/%s/%d, want 110/s/2284", rec.Congress, rec.BillType, rec.BillNumber)
	}
	if rec.Chamber != "senate" {
		t.Errorf("chamber = %q, want senate", rec.Chamber)
	}
}

func TestIdentityFromFilenameFallback(t *testing.T) {
	// No identity in the document at all.
	xmlDoc := `<billStatus><bill><title>Some Act</title></bill></billStatus>`

	rec, err := Parse(strings.NewReader(xmlDoc), "data/govinfo/BILLSTATUS/116/sres/BILLSTATUS-116sres42.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Congress != 116 || rec.BillType != "sres" || rec.BillNumber != 42 {
		t.Errorf("identity = %d/%s/%d, want 116/sres/42", rec.Congress, rec.BillType, rec.BillNumber)
	}
}

func TestIdentityFromDirsFallback(t *testing.T) {
	xmlDoc := `<billStatus><bill><title>Some Act</title></bill></billStatus>`

	rec, err := Parse(strings.NewReader(xmlDoc), "data/110/bills/hr/hr2642/fdsys_billstatus.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Congress != 110 || rec.BillType != "hr" || rec.BillNumber != 2642 {
		t.Errorf("identity = %d/%s/%d, want 110/hr/2642", rec.Congress, rec.BillType, rec.BillNumber)
	}
}

func TestMissingIdentity(t *testing.T) {
	xmlDoc := `<billStatus><bill><title>Some Act</title></bill></billStatus>`

	_, err := Parse(strings.NewReader(xmlDoc), "nowhere/special.xml")
	if err == nil {
		t.Fatal("expected error for missing identity")
	}
	if !strings.Contains(err.Error(), "missing bill identity") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader("<billStatus><unclosed"), "bad.xml")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLatestActionNilTimesSortFirst(t *testing.T) {
	when := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	acts := []Action{
		{Text: "no date"},
		{Time: &when, Text: "dated"},
	}
	latest := latestAction(acts)
	if latest == nil || latest.Text != "dated" {
		t.Errorf("latest = %+v, want the dated action", latest)
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"117", 117},
		{"117th", 117},
		{"hr 1", 1},
		{"none", 0},
	}
	for _, tt := range tests {
		if got := digits(tt.in); got != tt.want {
			t.Errorf("digits(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
