package source

import (
	"regexp"
	"strings"

	"github.com/riteshshukladev/FinSight/internal/model"
)

// bankSenders holds sender-ID fragments used by Indian banks and payment
// services. Matching any fragment marks the sender as a plausible financial
// origin.
var bankSenders = []string{
	// Indian banks
	"SBIINB", "HDFCBK", "ICICIB", "AXISBK", "KOTAKB", "YESBNK", "INDUSB",
	"UNIONB", "CANBK", "BOBCRD", "PNBSMS", "IOBCHN", "SYNDBK", "ANDBNK",
	"VIJAYB", "KARNBK", "MAHBK", "DENABNK", "FEDRAL", "TMBSMS",
	// Generic patterns
	"BANK", "ATM", "CARD", "PAY", "UPI", "WALLET", "RUPAY", "VISA", "MASTER",
	// Payment services
	"PAYTM", "GPAY", "PHONEPE", "AMAZON", "FLIPKART", "MOBIKW", "FREECRG",
	"OLAMON", "BHARTP", "AIRTEL", "JIOMON", "VODAFI",
}

// transactionKeywords are body fragments that suggest a message describes a
// money movement rather than an OTP or promotion.
var transactionKeywords = []string{
	// Credit keywords
	"credited", "credit", "received", "deposited", "added", "refund",
	"cashback", "reward", "bonus", "transfer received", "amount received",
	// Debit keywords
	"debited", "debit", "withdrawn", "spent", "paid", "purchase",
	"transaction", "charges", "fee", "auto debit", "emi", "bill payment",
	// Amount patterns
	"rs", "inr", "₹", "amount", "balance", "available", "limit",
	// Transaction rails
	"upi", "neft", "rtgs", "imps", "atm", "pos", "online", "mobile banking",
	"net banking", "card payment", "contactless",
}

var (
	// Sender IDs like "VM-HDFCBK" reduce to alphanumeric codes; some banks
	// also send from short numeric codes.
	senderCodePattern  = regexp.MustCompile(`^[A-Z]{2}-\d{6}$`)
	numericCodePattern = regexp.MustCompile(`^\d{6,7}$`)
)

// IsBankSender reports whether a sender address looks like a bank or payment
// service origin.
func IsBankSender(address string) bool {
	if address == "" {
		return false
	}

	upper := strings.ToUpper(address)
	for _, sender := range bankSenders {
		if strings.Contains(upper, sender) {
			return true
		}
	}
	return senderCodePattern.MatchString(upper) || numericCodePattern.MatchString(address)
}

// IsTransactionMessage reports whether a message body contains any
// transaction keyword.
func IsTransactionMessage(body string) bool {
	if body == "" {
		return false
	}

	lower := strings.ToLower(body)
	for _, keyword := range transactionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Prefilter keeps only messages that plausibly describe financial
// transactions, so obviously irrelevant SMS never reach the classifier.
func Prefilter(messages []model.RawMessage) []model.RawMessage {
	filtered := make([]model.RawMessage, 0, len(messages))
	for _, m := range messages {
		if IsBankSender(m.Sender) && IsTransactionMessage(m.Body) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
