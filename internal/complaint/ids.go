// File path: internal/complaint/ids.go
package complaint

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BuildPublicID formats the identifier shown to the citizen, e.g.
// "07-003-042". Numeric category codes are padded to two digits.
func BuildPublicID(codeNumeric string, objNo, genNo int64) string {
	code := strings.TrimSpace(codeNumeric)
	if n, err := strconv.Atoi(code); err == nil && n >= 0 {
		code = fmt.Sprintf("%02d", n)
	}
	return fmt.Sprintf("%s-%03d-%03d", code, objNo, genNo)
}

// InternalIDParams are the inputs of the registry identifier.
type InternalIDParams struct {
	DocTypeCode       string
	InstitutionCodes  []string
	CategoryCodeAlpha string
	ObjNo             int64
	GenNo             int64
	TotalNo           int64
	Title             string
	Date              time.Time
}

// BuildInternalID formats the registry identifier, e.g.
// `PET-PJ [BRC-003-042]/128/15.03.2024 -- "Braconaj"`.
func BuildInternalID(p InternalIDParams) string {
	return fmt.Sprintf(`%s-%s [%s-%03d-%03d]/%d/%s -- "%s"`,
		p.DocTypeCode, institutionCode(p.InstitutionCodes), p.CategoryCodeAlpha,
		p.ObjNo, p.GenNo, p.TotalNo, p.Date.Format("02.01.2006"), p.Title)
}

func institutionCode(codes []string) string {
	kept := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			kept = append(kept, code)
		}
	}
	if len(kept) == 0 {
		return "NA"
	}
	return strings.Join(kept, "+")
}
