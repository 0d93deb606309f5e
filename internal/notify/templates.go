package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/afparfum/internal/models"
)

// BuildOrderReceivedBody builds the HTML email sent when a deferred-payment
// order is placed.
func BuildOrderReceivedBody(o models.Order) string {
	intro := "We have received your order. It will be prepared as soon as your payment arrives."
	if o.Status == models.StatusConfirmed {
		intro = "We have received your order and your payment."
	}
	return buildBody("Thank you for your order", intro, o)
}

// BuildPaymentConfirmedBody builds the HTML email sent once payment is matched.
func BuildPaymentConfirmedBody(o models.Order) string {
	return buildBody("Payment confirmed", "Your payment was received and your order is being prepared.", o)
}

func buildBody(heading, intro string, o models.Order) string {
	var rows strings.Builder
	for _, item := range o.Items {
		name := item.ProductName
		if item.Size != "" {
			name += " (" + item.Size + ")"
		}
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			FormatPrice(item.UnitPrice),
			FormatPrice(item.LineSubtotal),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Georgia, serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1c1c1c; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: #d4af37; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hello %s,</p>
		<p>%s</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Product</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Price</th>
					<th style="padding: 12px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<table style="width: 100%%; background: #f8f9fa; border-radius: 5px; padding: 10px;">
			<tr><td>Subtotal</td><td style="text-align: right;">%s</td></tr>
			<tr><td>Shipping</td><td style="text-align: right;">%s</td></tr>
			<tr><td>Tax</td><td style="text-align: right;">%s</td></tr>
			<tr><td><b>Total</b></td><td style="text-align: right; font-size: 20px;"><b>%s</b></td></tr>
		</table>

		<p style="font-size: 14px; color: #666;">Payment method: %s</p>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This email was sent automatically. Reply to this address if you have any questions.
		</p>
	</div>
</body>
</html>`,
		html.EscapeString(heading),
		html.EscapeString(o.Billing.FullName),
		html.EscapeString(intro),
		html.EscapeString(o.OrderNumber),
		rows.String(),
		FormatPrice(o.Subtotal),
		FormatPrice(o.Shipping),
		FormatPrice(o.Tax),
		FormatPrice(o.GrandTotal),
		o.PaymentMethod,
	)
}
