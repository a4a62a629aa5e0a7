package classify

import (
	"fmt"
	"strings"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// BuildPrompt renders one batch of messages as a structured classification
// prompt. The output contract is a strict JSON array so the repairer has a
// fighting chance when the model truncates or decorates its answer.
func BuildPrompt(messages []model.RawMessage) string {
	var list strings.Builder
	for i, m := range messages {
		list.WriteString(fmt.Sprintf("Message %d (from %s, %s):\n%s\n\n",
			i+1,
			m.Sender,
			m.Date().Format("2006-01-02 15:04:05"),
			m.Body))
	}

	return fmt.Sprintf(`You are a financial SMS classifier for Indian bank and UPI transaction messages.

Analyze each message below and decide whether it describes a completed financial transaction.

INCLUDE only messages that state money actually moved: debits, credits, withdrawals, deposits, UPI transfers, card payments, EMI deductions, refunds, cashbacks.

EXCLUDE: OTPs, balance enquiries, promotional offers, payment reminders, failed or declined transactions, loan offers, statements and alerts that do not move money.

Messages:
%sFor each message, output one JSON object with these fields:
- "isFinancial": boolean, true only for completed transactions
- "category": "BANK" for account/card transactions, "UPI" for UPI transfers
- "type": "DEBIT" if money left the account, "CREDIT" if money came in
- "amount": the transaction amount as a plain number string, no currency symbols or commas
- "description": short human description of the transaction (merchant, purpose)
- "originalMessage": the full original message text, echoed back exactly
- "confidence": number between 0 and 1

Output a STRICT JSON array of these objects, one per financial message. Skip non-financial messages entirely.
Return ONLY raw JSON. Do NOT wrap the response in code fences or Markdown.
Output must begin with "[" and end with "]".`, list.String())
}
