package migrations

import (
	"context"
	"fmt"
)

type Migrator interface {
	Migrate(ctx context.Context) error
}

// PostgreSQL migrations
var PostgresSchema = `
CREATE TABLE IF NOT EXISTS api_calls (
    id BIGSERIAL PRIMARY KEY,
    external_user_id BIGINT,
    endpoint TEXT NOT NULL,
    method VARCHAR(10) NOT NULL,
    ip_address VARCHAR(45),
    request_body JSONB,
    status_code INTEGER NOT NULL DEFAULT 200,
    called_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_calls_called_at ON api_calls(called_at);
CREATE INDEX IF NOT EXISTS idx_api_calls_endpoint ON api_calls(endpoint);
`

// Oracle migrations
var OracleSchema = `
BEGIN
    EXECUTE IMMEDIATE 'CREATE TABLE api_calls (
        id NUMBER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
        external_user_id NUMBER,
        endpoint VARCHAR2(2048) NOT NULL,
        method VARCHAR2(10) NOT NULL,
        ip_address VARCHAR2(45),
        request_body CLOB,
        status_code NUMBER DEFAULT 200 NOT NULL,
        called_at TIMESTAMP WITH TIME ZONE NOT NULL
    )';
EXCEPTION
    WHEN OTHERS THEN
        IF SQLCODE != -955 THEN
            RAISE;
        END IF;
END;
`

// Couchbase indexes
func GetCouchbaseIndexes(bucketName string) []string {
	return []string{
		fmt.Sprintf("CREATE PRIMARY INDEX ON `%s`", bucketName),
		fmt.Sprintf("CREATE INDEX idx_api_calls_called_at ON `%s`(called_at)", bucketName),
		fmt.Sprintf("CREATE INDEX idx_api_calls_endpoint ON `%s`(endpoint)", bucketName),
	}
}
