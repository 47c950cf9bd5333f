// File path: internal/complaint/fill.go
package complaint

import (
	"html"
	"regexp"
	"strings"
	"time"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)
	bodyOpenPattern    = regexp.MustCompile(`(?i)<body(?:\s[^>]*)?>`)
)

const dateLayout = "02.01.2006"

// FillTemplate replaces {{ key }} tokens with values[key]. Values are HTML
// escaped unless raw[key] is set. Tokens without a value are left as they
// are.
func FillTemplate(template string, values map[string]string, raw map[string]bool) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		value, ok := values[key]
		if !ok {
			return token
		}
		if raw[key] {
			return value
		}
		return html.EscapeString(value)
	})
}

// SubmissionValues maps a submission onto the placeholder keys templates
// use. extras are merged last and win.
func SubmissionValues(sub Submission, extras map[string]string) map[string]string {
	p := sub.PersonalData
	incidentDate := strings.TrimSpace(sub.IncidentDate)
	if t, err := sub.IncidentTime(); err == nil {
		incidentDate = t.Format(dateLayout)
	}
	values := map[string]string{
		"firstName":           strings.TrimSpace(p.FirstName),
		"lastName":            strings.TrimSpace(p.LastName),
		"fullName":            p.FullName(),
		"email":               strings.TrimSpace(p.Email),
		"phoneNumber":         strings.TrimSpace(p.PhoneNumber),
		"country":             strings.TrimSpace(p.Country),
		"county":              strings.TrimSpace(p.County),
		"city":                strings.TrimSpace(p.City),
		"street":              strings.TrimSpace(p.Street),
		"houseNumber":         strings.TrimSpace(p.HouseNumber),
		"building":            strings.TrimSpace(p.Building),
		"staircase":           strings.TrimSpace(p.Staircase),
		"apartment":           strings.TrimSpace(p.Apartment),
		"address":             p.Address(),
		"incidentDate":        incidentDate,
		"incidentCounty":      strings.TrimSpace(sub.IncidentCounty),
		"incidentCity":        strings.TrimSpace(sub.IncidentCity),
		"incidentAddress":     strings.TrimSpace(sub.IncidentAddress),
		"incidentDescription": strings.TrimSpace(sub.IncidentDescription),
	}
	for k, v := range extras {
		values[k] = v
	}
	return values
}

// documentValues are the placeholders the service adds on top of the
// submission.
func documentValues(now time.Time, institutionName, publicID, internalID string) map[string]string {
	return map[string]string{
		"currentDate":     now.Format(dateLayout),
		"institutionName": institutionName,
		"publicId":        publicID,
		"internalId":      internalID,
	}
}

// InjectPublicID inserts the public-ID badge right after the first <body>
// tag, or at the start of the document when there is none.
func InjectPublicID(document, publicID string) string {
	badge := `<div style="text-align:right;font-weight:bold;">ID public: ` + html.EscapeString(publicID) + `</div>`
	loc := bodyOpenPattern.FindStringIndex(document)
	if loc == nil {
		return badge + document
	}
	return document[:loc[1]] + badge + document[loc[1]:]
}
