package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/ledger"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Inspect the attendance ledger",
}

var attendanceDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List all dates with attendance records",
	RunE:  runAttendanceDates,
}

var attendanceShowCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Show all records of one date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttendanceShow,
}

var attendanceCountCmd = &cobra.Command{
	Use:   "count <name>",
	Short: "Count present days for a person",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttendanceCount,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	attendanceCmd.AddCommand(attendanceDatesCmd)
	attendanceCmd.AddCommand(attendanceShowCmd)
	attendanceCmd.AddCommand(attendanceCountCmd)

	attendanceCountCmd.Flags().String("from", "", "Start date (YYYY-MM-DD, inclusive)")
	attendanceCountCmd.Flags().String("to", "", "End date (YYYY-MM-DD, inclusive)")
}

func openLedger() *ledger.Ledger {
	cfg := config.Load()
	return ledger.New(cfg.Storage.AttendanceDir)
}

func runAttendanceDates(cmd *cobra.Command, args []string) error {
	dates := openLedger().ListDates()
	if len(dates) == 0 {
		fmt.Println("No attendance records")
		return nil
	}
	for _, date := range dates {
		fmt.Println(date)
	}
	return nil
}

func runAttendanceShow(cmd *cobra.Command, args []string) error {
	date := args[0]

	records := openLedger().RecordsFor(date)
	if len(records) == 0 {
		fmt.Printf("No records for %s\n", date)
		return nil
	}

	fmt.Printf("Attendance for %s (%d present):\n", date, len(records))
	for _, rec := range records {
		fmt.Printf("  %s  %s\n", rec.Time, rec.Name)
	}
	return nil
}

func runAttendanceCount(cmd *cobra.Command, args []string) error {
	name := args[0]
	from := mustGetString(cmd, "from")
	to := mustGetString(cmd, "to")

	count := openLedger().CountFor(name, from, to)
	fmt.Printf("%s was present on %d day(s)\n", name, count)
	return nil
}
