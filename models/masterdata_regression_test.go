package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/utils"
	"github.com/shopspring/decimal"
)

func TestMasterDataLookupsAgainstPostgres(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	pgName, pgPort := startPostgresContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(pgName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", pgPort)
	t.Setenv("DB_NAME", "invoice_validation_test")
	t.Setenv("DB_SSL_MODE", "disable")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	// Fresh DB: creates pg_trgm and the trigram indexes.
	models.MigrateTable()

	org, err := models.CreateOrganization(ctx, &models.NewOrganization{
		Name:      "Acme Traders",
		Address:   "12 MG Road, Pune",
		StateName: "Maharashtra",
		StateCode: "27",
		GstNo:     "27AAAPL1234C1Z5",
		PanNumber: "AAAPL1234C",
	})
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if _, err := models.CreateOrganization(ctx, &models.NewOrganization{
		Name:      "Bharat Steel Works",
		Address:   "Plot 4, MIDC, Nashik",
		StateName: "Maharashtra",
		StateCode: "27",
		GstNo:     "27BBBPS5678D1Z3",
		PanNumber: "BBBPS5678D",
	}); err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}

	// Existence checks are case-insensitive and whitespace-tolerant.
	for _, name := range []string{"Acme Traders", "acme traders", "  ACME TRADERS  "} {
		exists, err := models.OrganizationNameExists(ctx, name)
		if err != nil {
			t.Fatalf("OrganizationNameExists(%q): %v", name, err)
		}
		if !exists {
			t.Fatalf("expected %q to exist", name)
		}
	}
	exists, err := models.OrganizationNameExists(ctx, "Acme Tradrs")
	if err != nil {
		t.Fatalf("OrganizationNameExists: %v", err)
	}
	if exists {
		t.Fatalf("misspelled name must not be an exact match")
	}

	exists, err = models.OrganizationAddressExists(ctx, "12 mg road, pune")
	if err != nil {
		t.Fatalf("OrganizationAddressExists: %v", err)
	}
	if !exists {
		t.Fatalf("expected address to exist case-insensitively")
	}

	// Fuzzy ranking: the misspelling must surface the real record first.
	matches, err := models.RankOrganizationsBySimilarity(ctx, "Acme Tradrs", 3)
	if err != nil {
		t.Fatalf("RankOrganizationsBySimilarity: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected at least one candidate")
	}
	if matches[0].Name != "Acme Traders" {
		t.Fatalf("expected Acme Traders first, got %q", matches[0].Name)
	}
	if matches[0].SimilarityScore <= 0 {
		t.Fatalf("expected a positive similarity score, got %f", matches[0].SimilarityScore)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].SimilarityScore > matches[i-1].SimilarityScore {
			t.Fatalf("candidates not ranked descending: %f after %f",
				matches[i].SimilarityScore, matches[i-1].SimilarityScore)
		}
	}

	addrMatches, err := models.RankOrganizationAddressesBySimilarity(ctx, "12 MG Rd, Pune", 3)
	if err != nil {
		t.Fatalf("RankOrganizationAddressesBySimilarity: %v", err)
	}
	if len(addrMatches) == 0 || addrMatches[0].Address != "12 MG Road, Pune" {
		t.Fatalf("expected the Pune address first, got %+v", addrMatches)
	}

	// GST lookup: cached on the second read, miss maps to the sentinel.
	got, err := models.GetOrganizationByGst(ctx, "27AAAPL1234C1Z5")
	if err != nil {
		t.Fatalf("GetOrganizationByGst: %v", err)
	}
	if got.ID != org.ID || got.PanNumber != "AAAPL1234C" {
		t.Fatalf("unexpected record %+v", got)
	}
	cached, err := models.GetOrganizationByGst(ctx, "27AAAPL1234C1Z5")
	if err != nil {
		t.Fatalf("GetOrganizationByGst (cached): %v", err)
	}
	if cached.ID != org.ID {
		t.Fatalf("cached read returned %+v", cached)
	}
	if _, err := models.GetOrganizationByGst(ctx, "29ZZZZZ9999Z9Z9"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}

	// Products.
	if _, err := models.CreateProduct(ctx, &models.NewProduct{
		ItemName: "Steel Pipe 2in",
		HsnSac:   "7306",
		Unit:     "NOS",
		Rate:     decimal.NewFromInt(450),
		Igst:     decimal.NewFromInt(18),
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	exists, err = models.ProductNameExists(ctx, "steel pipe 2in")
	if err != nil {
		t.Fatalf("ProductNameExists: %v", err)
	}
	if !exists {
		t.Fatalf("expected product to exist case-insensitively")
	}

	productMatches, err := models.RankProductsBySimilarity(ctx, "Steel Pip 2in", 3)
	if err != nil {
		t.Fatalf("RankProductsBySimilarity: %v", err)
	}
	if len(productMatches) == 0 || productMatches[0].ItemName != "Steel Pipe 2in" {
		t.Fatalf("expected the pipe first, got %+v", productMatches)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("invoice-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startPostgresContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("invoice-test-postgres-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "POSTGRES_PASSWORD=testpw",
		"-e", "POSTGRES_DB=invoice_validation_test",
		"-p", "127.0.0.1:0:5432",
		"postgres:16-alpine",
	)
	if err != nil {
		t.Fatalf("start postgres container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "pg_isready", "-U", "postgres", "-d", "invoice_validation_test")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("postgres did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
