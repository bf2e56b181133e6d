package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/repository"
	"github.com/tealeg/xlsx"
)

const exportDateLayout = "2006-01-02"

var exportHeaders = []string{
	"ID", "Product", "Price", "Quantity", "Size", "Customer Name", "Phone", "Email",
	"Address", "Remarks", "Coupon", "Discount %", "Total", "Status", "Date",
}

type BookingService struct {
	store repository.BookingStore
}

func NewBookingService(store repository.BookingStore) *BookingService {
	return &BookingService{store: store}
}

func (s *BookingService) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	return s.store.ListBookings(ctx, filter)
}

func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) error {
	if !domain.ValidBookingStatus(status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return expectAffected(s.store.UpdateBookingStatus(ctx, id, status))
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	return expectAffected(s.store.DeleteBooking(ctx, id))
}

func (s *BookingService) DailyStats(ctx context.Context, days int) ([]domain.DailyStat, error) {
	if days <= 0 {
		days = 7
	}
	return s.store.DailyBookingStats(ctx, days)
}

// ExportFilename names an export after the filtered day, or "all".
func ExportFilename(filter domain.BookingFilter, ext string) string {
	label := "all"
	if filter.Day != nil {
		label = filter.Day.Format(exportDateLayout)
	}
	return fmt.Sprintf("bookings_%s.%s", label, ext)
}

func (s *BookingService) ExportCSV(ctx context.Context, w io.Writer, filter domain.BookingFilter) error {
	bookings, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return err
	}
	for _, b := range bookings {
		if err := cw.Write(exportRow(b)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *BookingService) ExportXLSX(ctx context.Context, w io.Writer, filter domain.BookingFilter) error {
	bookings, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Bookings")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}
	for _, b := range bookings {
		row := sheet.AddRow()
		for i, v := range exportRow(b) {
			cell := row.AddCell()
			// quantity and discount stay numeric so the sheet can sum them
			if i == 3 || i == 11 {
				n, _ := strconv.Atoi(v)
				cell.SetInt(n)
				continue
			}
			cell.SetString(v)
		}
	}

	return file.Write(w)
}

func exportRow(b domain.Booking) []string {
	return []string{
		b.ID,
		b.ProductName,
		b.ProductPrice.StringFixed(2),
		strconv.Itoa(b.Quantity),
		b.Size,
		b.CustomerName,
		b.CustomerPhone,
		b.CustomerEmail,
		b.CustomerAddress,
		deref(b.Remarks),
		deref(b.CouponCode),
		strconv.Itoa(b.DiscountPercent),
		b.TotalAmount.StringFixed(2),
		b.Status,
		b.CreatedAt.Format(time.DateTime),
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
