// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests,
// providing realistic testing environments that closely match production.
//
// # Postgres Container
//
// The PostgresContainer provides a real PostgreSQL instance for testing the
// serving sink end to end, including migrations and the demote-then-insert
// refresh:
//
//	func TestSinkWrite(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer pg.Terminate(ctx)
//
//	    s, err := sink.New(ctx, &config.SinkConfig{
//	        DatabaseURL:    pg.ConnectionString(),
//	        MigrateOnStart: true,
//	    }, logger)
//	    // ...
//	}
//
// # CI Considerations
//
// These tests require Docker and network access and are guarded by the
// integration build tag. Tests skip gracefully when Docker is unavailable.
// First run may need to download container images; subsequent runs use
// cached images.
package testinfra
