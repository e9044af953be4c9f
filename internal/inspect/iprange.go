package inspect

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/bcnelson/addrscope/internal/domain"
)

var rangeSeparator = regexp.MustCompile(`\s*[-–—]\s*|\s+to\s+`)

func analyzeRange(input string) domain.AnalysisResult {
	parts := rangeSeparator.Split(input, 2)
	if len(parts) != 2 {
		return invalid("Invalid range: expected start and end separated by - or to")
	}
	startText, endText := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	start, startAddr, okStart := analyzeAddr(startText)
	end, endAddr, okEnd := analyzeAddr(endText)

	info := &domain.RangeInfo{
		Start:   startText,
		End:     endText,
		IsValid: domain.Bool(false),
	}
	r := domain.AnalysisResult{
		IsValid: domain.Bool(false),
		Range:   info,
		StartIP: &start,
		EndIP:   &end,
	}

	switch {
	case !okStart || !okEnd:
		r.Error = "Invalid range: both endpoints must be IP addresses"
		return r
	case startAddr.BitLen() != endAddr.BitLen():
		r.Error = "Invalid range: endpoints belong to different address families"
		return r
	}

	info.Start = start.Normalized
	info.End = end.Normalized
	r.Version = start.Version

	startInt, endInt := addrToInt(startAddr), addrToInt(endAddr)
	increasing := startInt.Cmp(endInt) <= 0
	size := new(big.Int).Sub(endInt, startInt)
	size.Abs(size).Add(size, one)

	info.Size = size
	info.IsIncreasing = domain.Bool(increasing)
	info.IsValid = domain.Bool(increasing)
	info.ClassificationMatch = domain.Bool(start.ClassType() == end.ClassType())

	r.IsValid = domain.Bool(increasing)
	r.Normalized = info.Start + " - " + info.End
	if domain.IsTrue(info.ClassificationMatch) {
		r.Class = start.Class
	}
	if !increasing {
		r.Error = "Invalid range: start address is greater than end address"
	}
	return r
}
