package di

import (
	"context"
	"testing"

	"github.com/atlas-parcel/core/internal/domain"
	"github.com/atlas-parcel/core/internal/platform/config"
)

type stubTrips struct{}

func (stubTrips) GetTrip(context.Context, string) (domain.Trip, error) {
	return domain.Trip{}, nil
}

type stubFeed struct{}

func (stubFeed) GetParcel(context.Context, string) (domain.Parcel, error) {
	return domain.Parcel{}, nil
}

func loadConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load(config.WithoutSystemEnv())
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestNewContainerWiresServices(t *testing.T) {
	container, err := NewContainer(loadConfig(t), Providers{
		Trips:   stubTrips{},
		Parcels: stubFeed{},
	})
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	svc := container.Services
	if svc.Pricing == nil || svc.Duty == nil || svc.Advisor == nil || svc.Quotes == nil || svc.Tracking == nil {
		t.Fatal("expected all services wired")
	}
	if got := svc.Duty.TableVersion(); got != domain.DefaultDutyTable().Version {
		t.Fatalf("table version = %q", got)
	}
}

func TestNewContainerRequiresProviders(t *testing.T) {
	cfg := loadConfig(t)
	if _, err := NewContainer(cfg, Providers{Parcels: stubFeed{}}); err == nil {
		t.Fatal("expected error without trip provider")
	}
	if _, err := NewContainer(cfg, Providers{Trips: stubTrips{}}); err == nil {
		t.Fatal("expected error without tracking feed")
	}
}

func TestNewContainerRejectsBadLocale(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Display.Locale = "no-such-locale-!!"
	if _, err := NewContainer(cfg, Providers{Trips: stubTrips{}, Parcels: stubFeed{}}); err == nil {
		t.Fatal("expected error for invalid locale")
	}
}
