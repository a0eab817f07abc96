// Command posctl is an operator CLI for the POS API. It keeps the
// terminal's meal-period preference in a local file and mirrors changes to
// the server.
//
//	posctl [-api URL] period [show|lunch|dinner|toggle|sync]
//	posctl menu [-search s] [-period LUNCH|DINNER|BOTH] [-available] [-category id] [-limit n]
//	posctl orders [-status s] [-limit n]
//	posctl orders totals ID...
//	posctl orders status ID STATUS
//	posctl dashboard
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/mealperiod"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/posclient"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultAPIURL = "http://localhost:8000/api/v1"

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	if err := logger.Init(getEnv("APP_ENV", "development")); err != nil {
		logger.L().Warn("logger init failed, using fallback", zap.Error(err))
	}
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.L().Error("posctl failed", zap.Error(err))
		os.Exit(1)
	}
}

type app struct {
	client *posclient.Client
	prefs  string
	out    io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("posctl", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", getEnv("POS_API_URL", defaultAPIURL), "POS API base URL")
	prefs := fs.String("prefs", os.Getenv("POS_PREFERENCE_FILE"), "meal-period preference file")
	timeout := fs.Duration("timeout", posclient.DefaultTimeout, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *prefs == "" {
		p, err := mealperiod.DefaultPreferencePath()
		if err != nil {
			return err
		}
		*prefs = p
	}

	a := &app{
		client: posclient.New(*apiURL).WithTimeout(*timeout),
		prefs:  *prefs,
		out:    out,
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("usage: posctl [flags] period|menu|orders|dashboard ...")
	}
	switch rest[0] {
	case "period":
		return a.period(ctx, rest[1:])
	case "menu":
		return a.menu(ctx, rest[1:])
	case "orders":
		return a.orders(ctx, rest[1:])
	case "dashboard":
		return a.dashboard(ctx)
	}
	return fmt.Errorf("unknown command %q", rest[0])
}

func (a *app) provider(ctx context.Context) (*mealperiod.Provider, error) {
	return mealperiod.NewProvider(ctx, mealperiod.NewFileStore(a.prefs))
}

func (a *app) period(ctx context.Context, args []string) error {
	cmd := "show"
	if len(args) > 0 {
		cmd = args[0]
	}

	p, err := a.provider(ctx)
	if err != nil {
		return err
	}

	switch cmd {
	case "show":
		fmt.Fprintf(a.out, "local:  %s\n", p.Current())
		st, err := a.client.AycePrice(ctx)
		if err != nil {
			fmt.Fprintf(a.out, "server: unreachable (%v)\n", err)
			return nil
		}
		fmt.Fprintf(a.out, "server: %s (AYCE %s)\n", st.CurrentMealPeriod, st.AycePrice)
		if !strings.EqualFold(st.CurrentMealPeriod, string(p.Current())) {
			fmt.Fprintln(a.out, "local preference differs from the server, run `posctl period sync` to adopt the server value")
		}
		return nil

	case "lunch", "dinner":
		if err := p.Set(ctx, models.MealPeriod(strings.ToUpper(cmd))); err != nil {
			return err
		}
		return a.pushPeriod(ctx, p.Current())

	case "toggle":
		next, err := p.Toggle(ctx)
		if err != nil {
			return err
		}
		return a.pushPeriod(ctx, next)

	case "sync":
		s, err := a.client.Settings(ctx)
		if err != nil {
			return err
		}
		period, ok := models.ParseMealPeriod(s.CurrentMealPeriod)
		if !ok || !period.IsServicePeriod() {
			return fmt.Errorf("server reported unexpected meal period %q", s.CurrentMealPeriod)
		}
		if err := p.Set(ctx, period); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "meal period synced from server: %s\n", period)
		return nil
	}
	return fmt.Errorf("unknown period command %q", cmd)
}

func (a *app) pushPeriod(ctx context.Context, p models.MealPeriod) error {
	st, err := a.client.SetMealPeriod(ctx, string(p))
	if err != nil {
		return fmt.Errorf("local preference set to %s but the server was not updated: %w", p, err)
	}
	fmt.Fprintf(a.out, "meal period: %s (AYCE %s)\n", st.CurrentMealPeriod, st.AycePrice)
	return nil
}

func (a *app) menu(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(a.out)
	search := fs.String("search", "", "name or description contains")
	period := fs.String("period", "", "LUNCH, DINNER or BOTH")
	available := fs.Bool("available", false, "only items that can be ordered now")
	category := fs.Uint("category", 0, "category id")
	limit := fs.Int("limit", 100, "max items")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := posclient.MenuQuery{
		Search:     *search,
		MealPeriod: *period,
		CategoryID: *category,
		Limit:      *limit,
	}
	if *available {
		q.AvailableNow = available
	}

	items, err := a.client.MenuItems(ctx, q)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tCATEGORY\tTAG\tORDERABLE\tNOTE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			it.ID, it.Name, it.Price, it.CategoryName, it.MealPeriodTag, it.AvailableNow, it.AvailabilityMessage)
	}
	return w.Flush()
}

func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, raw := range args {
		for _, part := range strings.Split(raw, ",") {
			if part == "" {
				continue
			}
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("invalid order id %q", part)
			}
			ids = append(ids, uint(n))
		}
	}
	return ids, nil
}

func (a *app) orders(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "totals":
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return errors.New("usage: posctl orders totals ID...")
			}
			totals, err := a.client.Totals(ctx, ids)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tSUBTOTAL\tDISCOUNT\tTOTAL\tAYCE")
			for _, t := range totals {
				discount, ayce := "-", "-"
				if t.DiscountAmount != nil {
					discount = *t.DiscountAmount
				}
				if t.AycePrice != nil {
					ayce = *t.AycePrice
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.OrderID, t.Subtotal, discount, t.Total, ayce)
			}
			return w.Flush()

		case "status":
			if len(args) != 3 {
				return errors.New("usage: posctl orders status ID STATUS")
			}
			ids, err := parseIDs(args[1:2])
			if err != nil || len(ids) != 1 {
				return fmt.Errorf("invalid order id %q", args[1])
			}
			o, err := a.client.UpdateOrderStatus(ctx, ids[0], strings.ToLower(args[2]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "order %d is now %s\n", o.ID, o.Status)
			return nil
		}
	}

	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	fs.SetOutput(a.out)
	status := fs.String("status", "", "filter by status")
	limit := fs.Int("limit", 20, "max orders")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := a.client.Orders(ctx, *status, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTABLE\tSTATUS\tITEMS\tTOTAL\tCREATED")
	for _, o := range list {
		total := "-"
		if o.Total != nil {
			total = o.Total.Total
		}
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\t%s\n", o.ID, o.TableID, o.Status, count, total, o.CreatedAt)
	}
	return w.Flush()
}

func (a *app) dashboard(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stats, err := a.client.DashboardStats(ctx)
	if err != nil {
		return err
	}
	recent, err := a.client.RecentOrders(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "orders: %d  active: %d  revenue: %s  avg time: %.1f min\n\n",
		stats.TotalOrders, stats.ActiveOrders, stats.TotalRevenue, stats.AverageOrderTime)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTABLE\tSTATUS\tITEMS\tTOTAL\tCREATED")
	for _, o := range recent {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\t%s\n", o.ID, o.TableID, o.Status, o.ItemCount, o.Total, o.CreatedAt)
	}
	return w.Flush()
}
