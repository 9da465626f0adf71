package googleplaces

import "github.com/onnwee/tablescout/internal/place"

// normalizeAll converts wire places to the canonical shape, dropping entries
// without a place ID since nothing downstream can identify them.
func normalizeAll(wire []wirePlace) []place.Place {
	out := make([]place.Place, 0, len(wire))
	for _, w := range wire {
		if w.ID == "" {
			continue
		}
		out = append(out, normalize(w))
	}
	return out
}

// normalize maps one wire place onto place.Place. Absent provider fields stay
// nil; default-coalescing is the ranking engine's job.
func normalize(w wirePlace) place.Place {
	p := place.Place{
		PlaceID:     w.ID,
		Rating:      w.Rating,
		PriceLevel:  w.PriceLevel,
		Types:       w.Types,
		PrimaryType: w.PrimaryType,
		Website:     w.WebsiteURI,
		Phone:       w.NationalPhoneNumber,
		Address:     w.FormattedAddress,
	}

	if w.DisplayName != nil && w.DisplayName.Text != "" {
		name := w.DisplayName.Text
		p.Name = &name
	}
	if w.UserRatingCount != nil {
		p.UserRatingCount = *w.UserRatingCount
	}
	if w.Location != nil {
		p.Location = &place.Point{Lat: w.Location.Latitude, Lng: w.Location.Longitude}
	}
	if w.CurrentOpeningHours != nil {
		p.OpenNow = w.CurrentOpeningHours.OpenNow
	}
	if w.EditorialSummary != nil && w.EditorialSummary.Text != "" {
		summary := w.EditorialSummary.Text
		p.Summary = &summary
	}

	return p
}
