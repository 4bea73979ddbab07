package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample directory data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"shift_applications", "shift_details", "shifts", "user_shift_settings", "default_shifts", "holidays", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		// Weekday preference representations vary across clients on purpose:
		// the normalizer has to cope with all of them.
		users := []struct {
			Name      string
			Position  int
			Status    string
			Preferred string
			Start     string
			End       string
			EmpStart  string
			EmpEnd    string
		}{
			{"Tanaka Yuki", 1, "active", "土,日", "09:00", "18:00", "2024-04-01", ""},
			{"Sato Hana", 2, "active", "Wed", "", "", "2024-06-15", ""},
			{"Suzuki Ren", 3, "active", "0,6", "22:00", "06:00", "2023-01-10", "2026-03-31"},
			{"Old Timer", 4, "retired", "", "", "", "2015-01-01", "2024-12-31"},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE name = ?", u.Name).Row().Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Name)
				continue
			}

			empEnd := interface{}(nil)
			if u.EmpEnd != "" {
				empEnd = u.EmpEnd
			}
			start := interface{}(nil)
			if u.Start != "" {
				start = u.Start
			}
			end := interface{}(nil)
			if u.End != "" {
				end = u.End
			}

			if err := db.Exec(
				"INSERT INTO users (name, position, status, preferred_week_days, default_start_time, default_end_time, employment_start_date, employment_end_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, now(), now())",
				u.Name, u.Position, u.Status, u.Preferred, start, end, u.EmpStart, empEnd,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Name, err)
			}
			fmt.Println("Seeded user:", u.Name)
		}

		holidays := []struct {
			Date string
			Name string
		}{
			{"2026-01-01", "New Year's Day"},
			{"2026-02-11", "National Foundation Day"},
			{"2026-05-05", "Children's Day"},
		}
		for _, h := range holidays {
			var exists int
			if err := db.Raw("SELECT 1 FROM holidays WHERE holiday_date = ?", h.Date).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO holidays (holiday_date, name) VALUES (?, ?)", h.Date, h.Name).Error; err != nil {
				log.Fatalf("failed to insert holiday %s: %v", h.Date, err)
			}
			fmt.Println("Seeded holiday:", h.Date, h.Name)
		}

		// one day and one night template per weekday, holiday templates for
		// the weekend only
		for weekday := 0; weekday <= 6; weekday++ {
			templates := []struct {
				DayType   string
				ShiftType string
				Start     string
				End       string
			}{
				{"weekday", "day", "09:00", "18:00"},
				{"weekday", "night", "21:00", "06:00"},
			}
			if weekday == 0 || weekday == 6 {
				templates = append(templates, struct {
					DayType   string
					ShiftType string
					Start     string
					End       string
				}{"holiday", "day", "10:00", "16:00"})
			}

			for _, t := range templates {
				var exists int
				if err := db.Raw(
					"SELECT 1 FROM default_shifts WHERE weekday = ? AND day_type = ? AND shift_type = ?",
					weekday, t.DayType, t.ShiftType,
				).Row().Scan(&exists); err == nil {
					continue
				}
				if err := db.Exec(
					"INSERT INTO default_shifts (weekday, day_type, shift_type, start_time, end_time) VALUES (?, ?, ?, ?, ?)",
					weekday, t.DayType, t.ShiftType, t.Start, t.End,
				).Error; err != nil {
					log.Fatalf("failed to insert default shift: %v", err)
				}
			}
		}
		fmt.Println("Seeded default shift templates")

		// leave limits: user 1 capped, the rest unlimited
		var firstUserID int64
		if err := db.Raw("SELECT id FROM users ORDER BY id LIMIT 1").Row().Scan(&firstUserID); err == nil {
			var exists int
			if err := db.Raw("SELECT 1 FROM user_shift_settings WHERE user_id = ?", firstUserID).Row().Scan(&exists); err != nil {
				if err := db.Exec(
					"INSERT INTO user_shift_settings (user_id, monthly_leave_limit) VALUES (?, ?)",
					firstUserID, 3,
				).Error; err != nil {
					log.Fatalf("failed to insert shift setting: %v", err)
				}
				fmt.Println("Seeded monthly leave limit for user", firstUserID)
			}
		}

		fmt.Println("Seeding complete")
	},
}
