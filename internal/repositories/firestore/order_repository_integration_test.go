//go:build integration

package firestore_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/payetonkawa/orders-api/internal/domain"
	"github.com/payetonkawa/orders-api/internal/platform/config"
	pfirestore "github.com/payetonkawa/orders-api/internal/platform/firestore"
	repofirestore "github.com/payetonkawa/orders-api/internal/repositories/firestore"
)

const firestoreEmulatorImage = "gcr.io/google.com/cloudsdktool/cloud-sdk:emulators"

func TestOrderRepositoryIntegration(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available: " + err.Error())
	}
	ensureDockerDaemon(t)

	port := freePort(t)
	endpoint := fmt.Sprintf("127.0.0.1:%d", port)
	containerID := startFirestoreEmulator(t, port)
	defer stopContainer(containerID)

	waitForEndpoint(t, endpoint, 30*time.Second)

	provider := pfirestore.NewProvider(config.FirestoreConfig{
		ProjectID:    "test-project",
		EmulatorHost: endpoint,
	})
	t.Cleanup(func() {
		_ = provider.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	repo, err := repofirestore.NewOrderRepository(provider, "orders_test")
	if err != nil {
		t.Fatalf("NewOrderRepository: %v", err)
	}

	id, err := repo.Insert(ctx, domain.Order{
		Date:      "2024-06-08",
		ProductID: "prod123",
		ClientID:  "client123",
		Quantity:  2,
		Price:     29.99,
		Status:    domain.OrderStatusPendingConfirmation,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !strings.HasPrefix(id, "ord_") {
		t.Fatalf("expected ord_ prefixed id, got %q", id)
	}

	order, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if order.ID != id || order.ClientID != "client123" || order.Price != 29.99 {
		t.Fatalf("unexpected order %#v", order)
	}

	if err := repo.UpdateFields(ctx, id, map[string]any{"status": domain.OrderStatusConfirmed, "price": 35.0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	order, err = repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID after update: %v", err)
	}
	if order.Status != domain.OrderStatusConfirmed || order.Price != 35.0 {
		t.Fatalf("update not applied: %#v", order)
	}
	if order.Date != "2024-06-08" {
		t.Fatalf("untouched field changed: %#v", order)
	}

	otherID, err := repo.Insert(ctx, domain.Order{
		Date:      "2024-06-09",
		ProductID: "prod456",
		ClientID:  "other",
		Quantity:  1,
		Price:     5,
		Status:    domain.OrderStatusPendingConfirmation,
	})
	if err != nil {
		t.Fatalf("Insert second order: %v", err)
	}

	matches, err := repo.FindByClient(ctx, "client123")
	if err != nil {
		t.Fatalf("FindByClient: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != id {
		t.Fatalf("unexpected matches %#v", matches)
	}

	deleted, err := repo.DeleteAll(ctx, matches)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}

	if _, err := repo.FindByID(ctx, id); err == nil {
		t.Fatalf("expected not found after batch delete")
	} else {
		type repoClassifier interface{ IsNotFound() bool }
		var cls repoClassifier
		if !errors.As(err, &cls) || !cls.IsNotFound() {
			t.Fatalf("expected not-found classification, got %v", err)
		}
	}

	remaining, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != otherID {
		t.Fatalf("unexpected remaining orders %#v", remaining)
	}

	if err := repo.Delete(ctx, otherID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Firestore deletes are idempotent; a repeat delete succeeds.
	if err := repo.Delete(ctx, otherID); err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}

	if err := repo.UpdateFields(ctx, otherID, map[string]any{"status": domain.OrderStatusDelivered}); err == nil {
		t.Fatalf("expected not found updating a deleted order")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	addr, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unable to allocate port: %v", err)
	}
	defer addr.Close()
	return addr.Addr().(*net.TCPAddr).Port
}

func startFirestoreEmulator(t *testing.T, port int) string {
	t.Helper()
	args := []string{
		"run", "-d", "--rm",
		"-p", fmt.Sprintf("%d:8080", port),
		firestoreEmulatorImage,
		"gcloud", "beta", "emulators", "firestore", "start",
		"--host-port=0.0.0.0:8080",
		"--quiet",
	}

	cmd := exec.Command("docker", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to start firestore emulator: %v - %s", err, string(out))
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		t.Fatalf("docker returned empty container id")
	}
	// Shorten the ID to match docker CLI behaviour for stop/remove commands.
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

func stopContainer(id string) {
	if id == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "stop", id)
	_ = cmd.Run()
}

func waitForEndpoint(t *testing.T, endpoint string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", endpoint, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		lastErr = err
		time.Sleep(250 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for endpoint")
	}
	t.Fatalf("emulator did not become ready: %v", lastErr)
}

func ensureDockerDaemon(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "docker", "info")
	if err := cmd.Run(); err != nil {
		t.Skip("docker daemon unavailable: " + err.Error())
	}
}
