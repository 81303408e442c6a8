package booking

import (
	"context"
	"fmt"

	"github.com/oiueei/oiueei/model"
	"github.com/oiueei/oiueei/repository/mailer"
)

// Email delivery is fire-and-forget: failures are logged and never
// surfaced to the caller, because the state transition is already
// committed by the time we get here.

func (s *service) notifyOwner(ctx context.Context, thing *model.Thing, b *model.Booking, owner *model.User) {
	acceptTok, err := s.tokens.IssueForBooking(ctx, model.ActionBookingAccept, b, owner.Email)
	if err != nil {
		s.log.Error("issue accept rsvp failed", "booking", b.Code, "err", err)
		return
	}
	rejectTok, err := s.tokens.IssueForBooking(ctx, model.ActionBookingReject, b, owner.Email)
	if err != nil {
		s.log.Error("issue reject rsvp failed", "booking", b.Code, "err", err)
		return
	}
	acceptLink := s.rsvpBase + "/" + acceptTok.Code
	rejectLink := s.rsvpBase + "/" + rejectTok.Code

	requesterName := b.RequesterEmail
	if u, err := s.u.ByCode(ctx, b.RequesterCode); err == nil {
		requesterName = u.DisplayName()
	}

	var subject, detail, htmlDetail string
	switch model.CategoryOf(b.ThingType) {
	case model.CategoryDateBased:
		subject = fmt.Sprintf("%s wants to book: %s", requesterName, thing.Headline)
		detail = fmt.Sprintf(" from %s to %s",
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
		htmlDetail = fmt.Sprintf("<p>Dates: %s - %s</p>",
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
	case model.CategoryRepeatable:
		subject = fmt.Sprintf("%s wants to order: %s", requesterName, thing.Headline)
		detail = fmt.Sprintf(", %dx for %s", *b.Quantity, b.DeliveryDate.Format(dateLayout))
		htmlDetail = fmt.Sprintf("<p>Quantity: %d</p><p>Delivery date: %s</p>",
			*b.Quantity, b.DeliveryDate.Format(dateLayout))
	default:
		subject = fmt.Sprintf("%s wants to reserve: %s", requesterName, thing.Headline)
	}

	msg := mailer.Message{
		To:      owner.Email,
		Subject: subject,
		Text: fmt.Sprintf("%s has requested '%s'%s. Accept: %s | Reject: %s",
			requesterName, thing.Headline, detail, acceptLink, rejectLink),
		HTML: fmt.Sprintf(`<html>
<p><strong>%s</strong> has requested:</p>
<p><strong>%s</strong></p>
%s
<p><a href="%s">Accept</a> | <a href="%s">Reject</a></p>
</html>`, requesterName, thing.Headline, htmlDetail, acceptLink, rejectLink),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("owner notification failed", "booking", b.Code, "to", owner.Email, "err", err)
	}
}

func (s *service) notifyRequester(ctx context.Context, thing *model.Thing, b *model.Booking, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}

	var subject, detail, htmlDetail string
	switch model.CategoryOf(b.ThingType) {
	case model.CategoryDateBased:
		subject = fmt.Sprintf("Your booking was %s: %s", outcome, thing.Headline)
		detail = fmt.Sprintf(" from %s to %s",
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
		htmlDetail = fmt.Sprintf("<p>Dates: %s - %s</p>",
			b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout))
	case model.CategoryRepeatable:
		subject = fmt.Sprintf("Your order was %s: %s", outcome, thing.Headline)
		detail = fmt.Sprintf(", %dx for %s", *b.Quantity, b.DeliveryDate.Format(dateLayout))
		htmlDetail = fmt.Sprintf("<p>Quantity: %d</p><p>Delivery date: %s</p>",
			*b.Quantity, b.DeliveryDate.Format(dateLayout))
	default:
		subject = fmt.Sprintf("Your reservation was %s: %s", outcome, thing.Headline)
	}

	msg := mailer.Message{
		To:      b.RequesterEmail,
		Subject: subject,
		Text: fmt.Sprintf("Your request for '%s'%s has been %s.",
			thing.Headline, detail, outcome),
		HTML: fmt.Sprintf(`<html>
<p>Your request has been <strong>%s</strong>:</p>
<p><strong>%s</strong></p>
%s
</html>`, outcome, thing.Headline, htmlDetail),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("requester notification failed", "booking", b.Code, "to", b.RequesterEmail, "err", err)
	}
}
