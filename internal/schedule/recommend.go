package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const genericHoursText = "Available hours:\n• Monday to Friday: 09:00 AM - 06:00 PM\n• Saturday: 09:00 AM - 01:00 PM"

// RecommendRequest asks what is open. Date and Time are optional.
type RecommendRequest struct {
	TenantID        int
	Date            string
	Time            string
	DurationMinutes int
	SlotMinutes     int
	AssignToUser    bool
	AssignToBranch  bool
	Location        string
}

// Recommendation is a human-facing answer plus the intervals behind it.
type Recommendation struct {
	Text            string     `json:"text"`
	Slots           []OpenSlot `json:"slots"`
	Total           int        `json:"total"`
	UpstreamMessage string     `json:"upstream_message,omitempty"`
}

// Recommend answers "what's open". An exact date and time get a live
// confirmation or denial; today, tomorrow or no date get the upstream's
// suggestions; later dates get that day's static hours. When the upstream
// cannot help it falls back to the weekly hours, then to typical hours.
func (v *Validator) Recommend(ctx context.Context, req RecommendRequest) Recommendation {
	ctx, span := scheduleTracer.Start(ctx, "schedule.recommend")
	defer span.End()
	span.SetAttributes(attribute.Int("tenant_id", req.TenantID))

	now := NowIn(v.loc, v.now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)

	day, dateErr := ParseDate(req.Date, v.loc)
	hasDate := strings.TrimSpace(req.Date) != "" && dateErr == nil
	tod, timeErr := ParseTimeOfDay(req.Time)
	hasTime := strings.TrimSpace(req.Time) != "" && timeErr == nil

	duration := SlotRequest{DurationMinutes: req.DurationMinutes}.duration()
	slotMinutes := SlotRequest{SlotMinutes: req.SlotMinutes}.slotMinutes()

	if hasDate && hasTime {
		span.SetAttributes(attribute.String("mode", "exact"))
		return v.recommendExact(ctx, req, day, tod, duration, slotMinutes)
	}

	if !hasDate || !day.After(today.AddDate(0, 0, 1)) {
		span.SetAttributes(attribute.String("mode", "suggest"))
		return v.recommendSuggested(ctx, req, duration, slotMinutes)
	}

	span.SetAttributes(attribute.String("mode", "static"))
	return v.recommendForDay(ctx, req.TenantID, day)
}

func (v *Validator) recommendExact(ctx context.Context, req RecommendRequest, day time.Time, tod TimeOfDay, duration time.Duration, slotMinutes int) Recommendation {
	start := At(day, tod, v.loc)
	end := start.Add(duration)
	avail := v.source.CheckAvailability(ctx, AvailabilityQuery{
		TenantID:       req.TenantID,
		Start:          start,
		End:            end,
		SlotMinutes:    slotMinutes,
		AssignToUser:   req.AssignToUser,
		AssignToBranch: req.AssignToBranch,
		Location:       req.Location,
	})
	if avail.Degraded {
		return v.fallback(ctx, req.TenantID, "")
	}

	label := fmt.Sprintf("%s %s at %s", start.Weekday(), start.Format(DateLayout), tod.Kitchen())
	text := fmt.Sprintf("The slot on %s is available.", label)
	if !avail.Available {
		text = fmt.Sprintf("The slot on %s is already taken. Please choose another time or date.", label)
	}
	return Recommendation{
		Text:  text,
		Slots: []OpenSlot{{Start: start, End: end, Available: avail.Available}},
		Total: 1,
	}
}

func (v *Validator) recommendSuggested(ctx context.Context, req RecommendRequest, duration time.Duration, slotMinutes int) Recommendation {
	s, err := v.source.SuggestSlots(ctx, SuggestQuery{
		TenantID:        req.TenantID,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: int(duration / time.Minute),
		SlotMinutes:     slotMinutes,
		AssignToUser:    req.AssignToUser,
		AssignToBranch:  req.AssignToBranch,
		Location:        req.Location,
	})
	if err != nil || s == nil {
		v.logger.Warn("slot suggestions unavailable", "tenant_id", req.TenantID, "error", err)
		return v.fallback(ctx, req.TenantID, "")
	}

	var lines []string
	for _, slot := range s.Slots {
		if !slot.Available {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s %s: %s - %s",
			slot.Start.Weekday(), slot.Start.Format(DateLayout),
			slot.Start.Format("03:04 PM"), slot.End.Format("03:04 PM")))
	}
	if len(lines) == 0 {
		return v.fallback(ctx, req.TenantID, s.Message)
	}

	text := "Open slots:\n" + strings.Join(lines, "\n")
	if s.Message != "" {
		text = s.Message + "\n" + text
	}
	return Recommendation{
		Text:            text,
		Slots:           s.Slots,
		Total:           s.Total,
		UpstreamMessage: s.Message,
	}
}

func (v *Validator) recommendForDay(ctx context.Context, tenantID int, day time.Time) Recommendation {
	doc, ok := v.source.FetchBusinessHours(ctx, tenantID)
	if !ok {
		return Recommendation{Text: genericHoursText}
	}

	label := fmt.Sprintf("%s %s", day.Weekday(), day.Format(DateLayout))
	hours := doc.ForDay(day.Weekday())
	if hours == "" || IsClosedMarker(hours) {
		rec := weeklyRecommendation(doc)
		rec.Text = fmt.Sprintf("We are closed on %s.\n%s", label, rec.Text)
		return rec
	}

	opens, closes, err := ParseHoursRange(hours)
	if err != nil {
		return Recommendation{Text: fmt.Sprintf("Hours for %s: %s", label, hours), Total: 1}
	}
	return Recommendation{
		Text: fmt.Sprintf("Hours for %s: %s - %s", label, opens.Kitchen(), closes.Kitchen()),
		Slots: []OpenSlot{{
			Start:     At(day, opens, v.loc),
			End:       At(day, closes, v.loc),
			Available: true,
		}},
		Total: 1,
	}
}

func (v *Validator) fallback(ctx context.Context, tenantID int, upstreamMsg string) Recommendation {
	doc, ok := v.source.FetchBusinessHours(ctx, tenantID)
	if !ok {
		return Recommendation{Text: genericHoursText, UpstreamMessage: upstreamMsg}
	}
	rec := weeklyRecommendation(doc)
	rec.UpstreamMessage = upstreamMsg
	return rec
}

func weeklyRecommendation(doc *BusinessHours) Recommendation {
	var lines []string
	for i, hours := range doc.Days {
		hours = strings.TrimSpace(hours)
		if hours == "" || IsClosedMarker(hours) {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", DayName(i), hours))
	}
	if len(lines) == 0 {
		return Recommendation{Text: "Please contact us directly for available hours."}
	}
	return Recommendation{
		Text:  "Available hours:\n" + strings.Join(lines, "\n"),
		Total: len(lines),
	}
}
