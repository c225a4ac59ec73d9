package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"lifeweeks/internal/dates"
	"lifeweeks/internal/snapshot"
)

// Status prints the settings, the calendar-accurate age, and the week grid
// occupancy for the configured horizon.
func (a *App) Status(ctx context.Context) error {
	settings, err := a.store.GetSettings(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	if settings == nil {
		fmt.Println("No birth date set yet. Run 'setdob' to get started.")
		return nil
	}

	now := nowFn()
	age := dates.AgeBreakdown(settings.BirthDate, now)
	stats := dates.Stats(settings.BirthDate, settings.LifeExpectancyYears, now)
	marks, err := a.store.ListMarks(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Born:        %s\n", dates.FormatISO(settings.BirthDate))
	fmt.Printf("Age:         %dy %dm %dd\n", age.Years, age.Months, age.Days)
	fmt.Printf("Horizon:     %d years\n", settings.LifeExpectancyYears)
	fmt.Printf("Weeks:       %d lived, %d remaining of %d (%.1f%%)\n",
		stats.LivedWeeks, stats.RemainingWeeks, stats.TotalWeeks, stats.Percent)
	fmt.Printf("This week:   ISO week %d of %d in %d\n",
		dates.ISOWeek(now), dates.WeeksInYear(now.Year()), now.Year())
	fmt.Printf("Marks:       %d\n", len(marks))
	return nil
}

// SetBirthDate prompts for day, month and year separately, validates the
// result, and stores it. Changing the birth date wipes all marks because
// their week indices no longer line up, so the user must confirm by typing
// the word 'yes'.
func (a *App) SetBirthDate(ctx context.Context) error {
	day, err := getSimpleText(a.reader, "- Enter day of birth (1-31)", os.Stdout)
	if err != nil {
		return err
	}
	month, err := getSimpleText(a.reader, "- Enter month of birth (1-12)", os.Stdout)
	if err != nil {
		return err
	}
	year, err := getSimpleText(a.reader, "- Enter year of birth", os.Stdout)
	if err != nil {
		return err
	}

	birth, err := dates.ParseUserDate(day, month, year, snapshot.MaxLifeExpectancyYears, nowFn())
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	marks, err := a.store.ListMarks(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	if len(marks) > 0 {
		ok, err := GetConfirmation(a.reader,
			fmt.Sprintf("Changing the birth date will delete all %d marks.", len(marks)),
			"yes", os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := a.store.SetBirthDate(ctx, birth); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Birth date set to", dates.FormatISO(birth))
	return nil
}

// SetExpectancy updates the life expectancy horizon, e.g. 'setexpectancy 85'.
func (a *App) SetExpectancy(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Printf("Usage: setexpectancy <years> (%d..%d)\n",
			snapshot.MinLifeExpectancyYears, snapshot.MaxLifeExpectancyYears)
		return nil
	}

	years, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Not a number:", args[0])
		return nil
	}

	if err := a.store.SetLifeExpectancy(ctx, years); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Life expectancy set to", years, "years")
	return nil
}
