// Package invoice renders itinerary invoices as PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Data is everything the invoice template needs.  Optional sections
// (flight, hotel) are skipped when the pointer is nil.
type Data struct {
	ItineraryID     uint64
	CustomerName    string
	CustomerEmail   string
	Status          string
	BookingDate     time.Time
	TotalPriceCents int64
	CardLast4       string
	Flight          *FlightLine
	Hotel           *HotelLine
}

// FlightLine summarizes the flight reservation on the invoice.
type FlightLine struct {
	BookingRef  string
	Origin      string
	Destination string
	DepartAt    time.Time
	ReturnAt    *time.Time
	PriceCents  int64
	Status      string
}

// HotelLine summarizes the hotel reservation on the invoice.
type HotelLine struct {
	HotelName  string
	RoomType   string
	CheckIn    time.Time
	CheckOut   time.Time
	Nights     int
	PriceCents int64
	Status     string
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// Render produces the invoice PDF as raw bytes.
func Render(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice #%d", d.ItineraryID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "FlyNext")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice #%d", d.ItineraryID))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Billed to: %s <%s>", d.CustomerName, d.CustomerEmail))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Booking date: %s", d.BookingDate.UTC().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", d.Status))
	pdf.Ln(6)
	if d.CardLast4 != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Paid with card ending in %s", d.CardLast4))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if d.Flight != nil {
		f := d.Flight
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Flight")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, fmt.Sprintf("Booking reference: %s", f.BookingRef))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("%s to %s, departing %s",
			f.Origin, f.Destination, f.DepartAt.UTC().Format("2006-01-02 15:04")))
		pdf.Ln(6)
		if f.ReturnAt != nil {
			pdf.Cell(0, 6, fmt.Sprintf("Return departing %s", f.ReturnAt.UTC().Format("2006-01-02 15:04")))
			pdf.Ln(6)
		}
		pdf.Cell(0, 6, fmt.Sprintf("Status: %s", f.Status))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Price: %s", dollars(f.PriceCents)))
		pdf.Ln(10)
	}

	if d.Hotel != nil {
		h := d.Hotel
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Hotel")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, fmt.Sprintf("%s, %s", h.HotelName, h.RoomType))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Check-in %s, check-out %s (%d nights)",
			h.CheckIn.UTC().Format("2006-01-02"), h.CheckOut.UTC().Format("2006-01-02"), h.Nights))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Status: %s", h.Status))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Price: %s", dollars(h.PriceCents)))
		pdf.Ln(10)
	}

	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s", dollars(d.TotalPriceCents)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
