package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/camfeed/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":3060")
//	-i string     ingest path prefix (e.g., "/")
//	-g string     gRPC health bind address, empty disables
//	-d string     PostgreSQL DSN
//	-t duration   store timeout (e.g., "5s")
//	-m int        maximum request body, bytes
//	-f string     schema variant: "full" or "reduced"
//	-l string     log level
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name, empty disables the archive
//	-r string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is first filtered to the flags handled here with flagx.FilterArgs,
// so -c / -config and flags owned elsewhere do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-i", "-g", "-d", "-t", "-m", "-f", "-l", "-u", "-p", "-b", "-r", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.IngestPath, "i", config.IngestPath, "ingest path prefix")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "gRPC health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.StoreTimeout, "t", config.StoreTimeout, "store timeout")
	fs.Int64Var(&config.MaxBodyBytes, "m", config.MaxBodyBytes, "max request body size in bytes")
	fs.StringVar(&config.SchemaVariant, "f", config.SchemaVariant, "schema variant (full|reduced)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
