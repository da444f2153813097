package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// This file renders the Persian texts the traveler actually reads: the
// dialogue prompts, the failure messages, and the ticket summary. Keeping
// them in one place makes the wording reviewable by a non-programmer.

// maxOffersShown caps how many offers one reply lists.
const maxOffersShown = 5

const (
	msgAskOrigin      = "جستجوی جدید شروع شد. لطفاً نام شهر مبدا را وارد کنید:"
	msgAskDestination = "عالی! حالا نام شهر مقصد را وارد کنید:"
	msgAskDate        = "متشکرم. حالا تاریخ مورد نظر را وارد کنید (مثال: ۲۸ شهریور):"
	msgSearching      = "در حال جستجو... لطفاً چند لحظه صبر کنید 🔎"
	msgCancelled      = "عملیات لغو شد. برای شروع مجدد /search را بزنید."
	msgBadDate        = "فرمت تاریخ اشتباه است. لطفاً به صورت «روز ماه» وارد کنید (مثال: ۲۸ شهریور)."
	msgProviderError  = "خطا در اتصال به سرور جستجو. لطفاً لحظاتی دیگر دوباره تلاش کنید."
	msgBadResponse    = "پاسخ دریافت شده از سرور معتبر نبود."
	msgRephrase       = "نتوانستم مبدا، مقصد و تاریخ را از جمله شما تشخیص دهم. لطفاً دوباره و کامل‌تر بنویسید."
	msgModelDown      = "جستجوی هوشمند در دسترس نیست. برای جستجوی مرحله‌به‌مرحله /search را بزنید."
)

// msgGreeting welcomes a traveler and points at the dialogue entry command.
func msgGreeting() string {
	return "سلام! 👋\n\nبرای جستجوی بلیط، دستور /search را بفرست."
}

// msgUnknownCities names exactly the cities that failed to resolve.
func msgUnknownCities(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "«" + name + "»"
	}
	return fmt.Sprintf("متاسفانه شهر %s در لیست ما وجود ندارد.", strings.Join(quoted, " یا "))
}

// msgNoTickets reports the normal empty-result outcome for a route and date.
func msgNoTickets(originName, destinationName, date string) string {
	return fmt.Sprintf("متاسفانه در تاریخ %s هیچ بلیطی از %s به %s یافت نشد.", date, originName, destinationName)
}

// pricePrinter renders thousands-grouped numbers ("123,450").
var pricePrinter = message.NewPrinter(language.English)

// formatOffers builds the multi-line ticket summary: a route/date header
// followed by at most maxOffersShown offer blocks. Prices arrive in provider
// units (rials) and are shown divided by 10 (tomans).
func formatOffers(originName, destinationName, date string, offers []TicketOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "نتایج یافت شده برای %s به %s در تاریخ %s:\n\n", originName, destinationName, date)

	shown := offers
	if len(shown) > maxOffersShown {
		shown = shown[:maxOffersShown]
	}
	for _, offer := range shown {
		fmt.Fprintf(&b, "🚌 شرکت: %s\n", offer.Company)
		fmt.Fprintf(&b, "⏰ ساعت حرکت: %s\n", offer.DepartureTime)
		fmt.Fprintf(&b, "💰 قیمت: %s تومان\n", pricePrinter.Sprintf("%d", offer.Price/10))
		fmt.Fprintf(&b, "📍 ترمینال: %s\n", offer.OriginTerminal)
		if offer.BusType != "" {
			fmt.Fprintf(&b, "نوع وسیله: %s\n", offer.BusType)
		}
		b.WriteString("--------------------\n")
	}

	return b.String()
}
