package main

import (
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/domain/voucher"
	"github.com/storein/mobile-core/internal/infrastructure/logger"
	"github.com/storein/mobile-core/internal/stubserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	seed := flag.Bool("seed", true, "seed the store with sample vouchers")
	flag.Parse()

	log, err := logger.NewForEnvironment(os.Getenv("STOREIN_APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	store := stubserver.NewStore()
	if *seed {
		seedStore(store)
		log.Info("seeded sample vouchers")
	}

	srv := stubserver.New(store, log)
	if err := srv.Run(*addr); err != nil {
		log.Fatal("stub backend stopped", zap.Error(err))
	}
}

func seedStore(store *stubserver.Store) {
	voucherID := uuid.New()
	detailID := uuid.New()
	store.Put(&voucher.StorageVoucher{
		ID:                voucherID,
		Code:              "SV-20260831-001",
		StorageDate:       time.Now().Truncate(24 * time.Hour),
		Priority:          voucher.PriorityHigh,
		Status:            voucher.StatusApproved,
		CreatedBy:         "warehouse-inbound",
		AssignedName:      "Sample Operator",
		IsValidForProcess: true,
		Details: []voucher.Detail{
			{
				ID:        detailID,
				VoucherID: voucherID,
				StockID:   uuid.New(),
				Code:      "GOOD-001",
				Name:      "Sample Good",
				Supplier:  "Acme Supplies",
				LotNumber: "LOT-42",
				Cost:      decimal.NewFromFloat(12.50),
				Quantity:  decimal.NewFromInt(100),
			},
		},
	})
	store.Put(&voucher.StorageVoucher{
		ID:          uuid.New(),
		Code:        "SV-20260831-002",
		StorageDate: time.Now().Truncate(24 * time.Hour),
		Priority:    voucher.PriorityLow,
		Status:      voucher.StatusPending,
		CreatedBy:   "warehouse-inbound",
	})
}
