// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in this order, highest first:

 1. CLI flags that were set explicitly
 2. Environment variables (github.com/caarlos0/env)
 3. The dotenv file named by -env-file, default .env (github.com/joho/godotenv);
    a missing file is ignored
 4. Defaults from the envDefault struct tags

# Settings

	flag              env                 default
	-p                PORT                3318
	-d                DATABASE_URL        secretballot.db
	-t                DATABASE_TYPE       sqlite (or postgres)
	-secret           INTERACTION_SECRET  required
	-window           VOTE_WINDOW         2m
	-fanout           FANOUT_LIMIT        10
	-render-interval  RENDER_INTERVAL     1s (0 disables pacing)
	-log-level        LOG_LEVEL           info

# Validation

ParseFlags returns an error if INTERACTION_SECRET is missing, the database
type is unknown, the port is out of range, the window or fanout limit is not
positive, or the log level does not parse.
*/
package cliparse
