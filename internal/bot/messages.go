package bot

import (
	"fmt"
	"strings"

	"ledgerbot/internal/core"
)

const (
	msgGreeting     = "שלח לי פעולה"
	msgUsage        = "שלח פעולה בפורמט: <כמות> <פעולה>\nלדוגמה: 2 שתל"
	msgNotTwoTokens = "לא הבנתי את ההודעה."
	msgBadQuantity  = "הכמות חייבת להיות מספר שלם חיובי."
	msgEmptyAction  = "חסר שם פעולה אחרי הכמות."
	msgOverflow     = "הסכום גדול מדי, נסה כמות קטנה יותר."
	msgAppendFailed = "שמירת הפעולה נכשלה, נסה שוב מאוחר יותר."
	msgReadFailed   = "קריאת הנתונים נכשלה, נסה שוב מאוחר יותר."
	msgNoRecords    = "אין רשומות בתקופה זו."
	msgSummaryUsage = "שימוש: /summary [daily|weekly|monthly]\nללא פרמטר: כל הזמנים."
)

var periodTitles = map[core.Period]string{
	"":           "כל הזמנים",
	core.Daily:   "היום",
	core.Weekly:  "7 הימים האחרונים",
	core.Monthly: "30 הימים האחרונים",
}

func helpText(c *core.Catalog) string {
	var b strings.Builder
	b.WriteString(msgUsage)
	b.WriteString("\n\nפקודות:\n")
	b.WriteString("/prices - מחירון\n")
	b.WriteString("/summary [daily|weekly|monthly] - הסיכום שלך\n")
	b.WriteString("/report [daily|weekly|monthly] - סיכום כל המשתמשים\n\n")
	b.WriteString(pricesText(c))
	return b.String()
}

func pricesText(c *core.Catalog) string {
	var b strings.Builder
	b.WriteString("מחירון:")
	for _, e := range c.Entries() {
		fmt.Fprintf(&b, "\n• %s: %d", e.Name, e.UnitPrice)
	}
	return b.String()
}

func parseFailureText(f *core.ParseFailure) string {
	var reason string
	switch f.Reason {
	case core.QuantityNotInteger:
		reason = msgBadQuantity
	case core.EmptyActionName:
		reason = msgEmptyAction
	default:
		reason = msgNotTwoTokens
	}
	return reason + "\n" + msgUsage
}

func unknownActionText(name, suggestion string, c *core.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "הפעולה '%s' לא מוכרת.", name)
	if suggestion != "" {
		fmt.Fprintf(&b, " האם התכוונת ל'%s'?", suggestion)
	}
	b.WriteString("\nפעולות אפשריות: ")
	b.WriteString(strings.Join(c.Names(), ", "))
	return b.String()
}

func confirmationText(r core.PricedRecord) string {
	return fmt.Sprintf("הפעולה נשמרה! %d × %s = %d", r.Quantity, r.ActionName, r.Total)
}

func summaryText(s core.Summary, p core.Period, user string) string {
	var b strings.Builder
	b.WriteString("סיכום ")
	b.WriteString(periodTitles[p])
	if user != "" {
		fmt.Fprintf(&b, " עבור %s", user)
	}
	b.WriteString(":")
	if len(s.PerAction) == 0 {
		b.WriteString("\n")
		b.WriteString(msgNoRecords)
	}
	for _, a := range s.PerAction {
		fmt.Fprintf(&b, "\n• %s: %d", a.Name, a.Quantity)
	}
	fmt.Fprintf(&b, "\nסה\"כ: %d", s.TotalAmount)
	return b.String()
}
