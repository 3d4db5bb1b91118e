package features

import "EventWeights/internal/domain/models"

// CodeSpace enumerates every weight code the calculator may produce for defs.
// Order follows defs; each type1 event lists its shifted codes from -12 to 12.
func CodeSpace(defs []models.EventDefinition) []models.WeightCode {
	n := 0
	for _, d := range defs {
		n += 2
		if d.Type == models.Type1 {
			n += 2 * (2*models.MaxShift + 1)
		}
	}

	out := make([]models.WeightCode, 0, n)
	for _, d := range defs {
		out = append(out,
			models.WeightCode{EventID: d.ID, Type: d.Type, Mode: models.ModeMagnitude},
			models.WeightCode{EventID: d.ID, Type: d.Type, Mode: models.ModeTrend},
		)
		if d.Type != models.Type1 {
			continue
		}
		for h := -models.MaxShift; h <= models.MaxShift; h++ {
			out = append(out,
				models.NewWeightCode(d.ID, d.Type, models.ModeMagnitude, h),
				models.NewWeightCode(d.ID, d.Type, models.ModeTrend, h),
			)
		}
	}
	return out
}

// CodeStrings renders codes in order.
func CodeStrings(codes []models.WeightCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}
