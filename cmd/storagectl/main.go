package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/application/fulfillment"
	"github.com/storein/mobile-core/internal/domain/voucher"
	"github.com/storein/mobile-core/internal/infrastructure/api"
	"github.com/storein/mobile-core/internal/infrastructure/config"
	"github.com/storein/mobile-core/internal/infrastructure/logger"
)

const usage = `storagectl - storage voucher fulfillment client

Usage:
  storagectl list [-page N] [-size N] [-status S] [-code C] [-search Q]
  storagectl show <voucher-id>
  storagectl status <voucher-id> <DRAFT|PENDING|APPROVED|REJECTED|CANCELLED>
  storagectl process <voucher-id>
  storagectl notify <voucher-id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	transport := api.NewTransport(cfg.API.BaseURL,
		api.StaticTokenSource(cfg.API.AccessToken),
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		api.WithMaxResponseSize(cfg.API.MaxResponseSize),
		api.WithLogger(log),
	)
	client := api.NewStorageVoucherClient(transport)
	store := fulfillment.NewLifecycleStore(client, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	defer cancel()

	var cmdErr error
	switch os.Args[1] {
	case "list":
		cmdErr = runList(ctx, store, os.Args[2:])
	case "show":
		cmdErr = runShow(ctx, store, os.Args[2:])
	case "status":
		cmdErr = runStatus(ctx, store, os.Args[2:])
	case "process":
		cmdErr = runProcess(ctx, store, os.Args[2:])
	case "notify":
		cmdErr = runNotify(ctx, store, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(cmdErr))
		fmt.Fprintf(os.Stderr, "error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func runList(ctx context.Context, store *fulfillment.LifecycleStore, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "page size")
	status := fs.String("status", "", "filter by status")
	code := fs.String("code", "", "filter by voucher code")
	search := fs.String("search", "", "free-text search")
	_ = fs.Parse(args)

	query := fulfillment.ListQuery{
		Page:     *page,
		PageSize: *size,
		Status:   voucher.Status(*status),
		Code:     *code,
		Search:   *search,
	}
	results, count, err := store.List(ctx, query)
	if err != nil {
		return err
	}

	fmt.Printf("%d voucher(s) total, showing %d:\n", count, len(results))
	for _, s := range results {
		fmt.Printf("  %s  %-20s %-10s priority=%d details=%d %s\n",
			s.ID, s.Code, s.Status, s.Priority, s.DetailCount,
			s.StorageDate.Format("2006-01-02"))
	}
	return nil
}

func runShow(ctx context.Context, store *fulfillment.LifecycleStore, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	v, err := store.FetchByID(ctx, id)
	if err != nil {
		return err
	}
	printVoucher(v)
	return nil
}

func runStatus(ctx context.Context, store *fulfillment.LifecycleStore, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: storagectl status <voucher-id> <status>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid voucher id %q: %w", args[0], err)
	}
	target := voucher.Status(args[1])
	if !target.IsValid() {
		return fmt.Errorf("invalid status %q", args[1])
	}
	v, err := store.RequestStatus(ctx, id, target)
	if err != nil {
		return err
	}
	fmt.Printf("voucher %s is now %s\n", v.Code, v.Status)
	return nil
}

func runProcess(ctx context.Context, store *fulfillment.LifecycleStore, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	v, err := store.RequestProcess(ctx, id)
	if err != nil {
		return err
	}
	if v.CompletedAt != nil {
		fmt.Printf("voucher %s processed, completed at %s\n", v.Code, v.CompletedAt.Format(time.RFC3339))
	} else {
		fmt.Printf("voucher %s processed, status %s\n", v.Code, v.Status)
	}
	return nil
}

func runNotify(ctx context.Context, store *fulfillment.LifecycleStore, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	result, err := store.RequestCompletionNotification(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("notification: HTTP %d %s\n", result.StatusCode, result.Message)
	return nil
}

func parseID(args []string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, fmt.Errorf("expected exactly one voucher id argument")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid voucher id %q: %w", args[0], err)
	}
	return id, nil
}

func printVoucher(v *voucher.StorageVoucher) {
	fmt.Printf("Voucher %s (%s)\n", v.Code, v.ID)
	fmt.Printf("  status:   %s\n", v.Status)
	fmt.Printf("  priority: %d\n", v.Priority)
	fmt.Printf("  date:     %s\n", v.StorageDate.Format("2006-01-02"))
	if v.AssignedName != "" {
		fmt.Printf("  assigned: %s\n", v.AssignedName)
	}
	if v.Notes != "" {
		fmt.Printf("  notes:    %s\n", v.Notes)
	}
	for i := range v.Details {
		d := &v.Details[i]
		fmt.Printf("  detail %s %q total=%s allocated=%s remaining=%s items=%d\n",
			d.Code, d.Name, d.Quantity, d.AllocatedQuantity(), d.RemainingQuantity(), len(d.Items))
	}
}
