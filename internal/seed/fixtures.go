package seed

import (
	"time"

	"github.com/ecopickup/ecopickup/internal/pickup"
)

// pointsPerKg converts collected weight into awarded points.
const pointsPerKg = 10

func day(month time.Month, d, hour int) time.Time {
	return time.Date(2024, month, d, hour, 0, 0, 0, time.UTC)
}

func completed(id, userID string, scheduled time.Time, estimated, actual float64, address string, waste ...string) pickup.PickupRequest {
	w := actual
	return pickup.PickupRequest{
		ID:              id,
		UserID:          userID,
		ScheduledDate:   scheduled,
		Status:          pickup.StatusCompleted,
		EstimatedWeight: estimated,
		ActualWeight:    &w,
		WasteTypes:      waste,
		PointsEarned:    int(actual*pointsPerKg + 0.5),
		CreatedAt:       scheduled.AddDate(0, 0, -3),
		Address:         address,
	}
}

func pending(id, userID string, status pickup.PickupStatus, scheduled time.Time, estimated float64, address string, waste ...string) pickup.PickupRequest {
	return pickup.PickupRequest{
		ID:              id,
		UserID:          userID,
		ScheduledDate:   scheduled,
		Status:          status,
		EstimatedWeight: estimated,
		WasteTypes:      waste,
		CreatedAt:       scheduled.AddDate(0, 0, -2),
		Address:         address,
	}
}

// SamplePickups returns the fixed demo pickup collection.
func SamplePickups() []pickup.PickupRequest {
	const (
		addrAna   = "Jl. Merdeka No. 12, Bandung"
		addrBudi  = "Jl. Sudirman No. 45, Jakarta"
		addrCitra = "Jl. Diponegoro No. 7, Surabaya"
		addrDewi  = "Jl. Gajah Mada No. 88, Semarang"
	)
	return []pickup.PickupRequest{
		completed("pickup-1", "user-1", day(time.January, 15, 9), 4.0, 3.5, addrAna, "plastic", "paper"),
		completed("pickup-2", "user-2", day(time.January, 18, 10), 6.0, 6.2, addrBudi, "glass", "metal"),
		pending("pickup-3", "user-1", pickup.StatusScheduled, day(time.March, 4, 9), 3.0, addrAna, "organic"),
		pending("pickup-4", "user-3", pickup.StatusInProgress, day(time.February, 28, 13), 5.5, addrCitra, "electronic"),
		completed("pickup-5", "user-3", day(time.February, 2, 8), 2.5, 2.8, addrCitra, "paper"),
		pending("pickup-6", "user-2", pickup.StatusCancelled, day(time.February, 10, 15), 1.5, addrBudi, "plastic"),
		pending("pickup-7", "user-4", pickup.StatusScheduled, day(time.March, 6, 11), 7.0, addrDewi, "metal", "glass"),
		completed("pickup-8", "user-4", day(time.February, 14, 9), 8.0, 7.5, addrDewi, "plastic", "metal", "paper"),
		pending("pickup-9", "user-2", pickup.StatusScheduled, day(time.March, 8, 10), 4.5, addrBudi, "paper"),
		completed("pickup-10", "user-1", day(time.February, 20, 14), 5.0, 5.1, addrAna, "organic", "plastic"),
		pending("pickup-11", "user-2", pickup.StatusInProgress, day(time.March, 1, 9), 3.5, addrBudi, "electronic"),
		pending("pickup-12", "user-3", pickup.StatusScheduled, day(time.March, 12, 16), 2.0, addrCitra, "glass"),
	}
}

// SamplePoints returns the fixed demo points ledger: one entry per completed
// sample pickup plus activity awards.
func SamplePoints() []pickup.PointsLedgerEntry {
	ledger := make([]pickup.PointsLedgerEntry, 0, 8)
	for _, p := range SamplePickups() {
		if p.Status != pickup.StatusCompleted {
			continue
		}
		ledger = append(ledger, pickup.PointsLedgerEntry{
			ID:           "points-" + p.ID,
			UserID:       p.UserID,
			PointsEarned: p.PointsEarned,
			Source:       p.ID,
			CreatedAt:    p.ScheduledDate.Add(2 * time.Hour),
		})
	}
	return append(ledger,
		pickup.PointsLedgerEntry{ID: "points-signup-user-1", UserID: "user-1", PointsEarned: 50, Source: "signup-bonus", CreatedAt: day(time.January, 2, 8)},
		pickup.PointsLedgerEntry{ID: "points-referral-user-2", UserID: "user-2", PointsEarned: 25, Source: "referral", CreatedAt: day(time.January, 20, 12)},
		pickup.PointsLedgerEntry{ID: "points-streak-user-4", UserID: "user-4", PointsEarned: 15, Source: "weekly-streak", CreatedAt: day(time.February, 21, 7)},
	)
}

// SampleUsers returns the fixed demo accounts. The list is longer than the default
// bootstrap threshold so a seeded users slot is not re-seeded.
func SampleUsers() []pickup.UserAccount {
	return []pickup.UserAccount{
		{ID: "admin-1", Email: "admin@ecopickup.local", FullName: "Rina Admin", Role: pickup.RoleAdmin, CreatedAt: day(time.January, 1, 0), IsActive: true},
		{ID: "driver-1", Email: "driver@ecopickup.local", FullName: "Joko Driver", Role: pickup.RoleDriver, CreatedAt: day(time.January, 1, 1), IsActive: true},
		{ID: "user-1", Email: "ana@ecopickup.local", FullName: "Ana Lestari", Role: pickup.RoleUser, CreatedAt: day(time.January, 2, 8), IsActive: true},
		{ID: "user-2", Email: "budi@ecopickup.local", FullName: "Budi Santoso", Role: pickup.RoleUser, CreatedAt: day(time.January, 5, 10), IsActive: true},
		{ID: "user-3", Email: "citra@ecopickup.local", FullName: "Citra Wulandari", Role: pickup.RoleUser, CreatedAt: day(time.January, 9, 14), IsActive: true},
		{ID: "user-4", Email: "dewi@ecopickup.local", FullName: "Dewi Kusuma", Role: pickup.RoleUser, CreatedAt: day(time.January, 12, 9), IsActive: false},
	}
}
