package core

// Cortex REST API constants
const (
	CortexAgentRunPath          = "/api/v2/cortex/agent:run"
	HeaderSnowflakeTokenType    = "X-Snowflake-Authorization-Token-Type"
	TokenTypeProgrammaticAccess = "PROGRAMMATIC_ACCESS_TOKEN"
	SnowflakeHostSuffix         = ".snowflakecomputing.com"
)

// Cortex agent tool types
const (
	ToolTypeAnalystTextToSQL = "cortex_analyst_text_to_sql"
	ToolTypeCortexSearch     = "cortex_search"
	ToolTypeSQLExec          = "sql_exec"
	ToolChoiceAuto           = "auto"
)

// Sample agent run parameters
const (
	DefaultAgentModel          = "claude-3-5-sonnet"
	DefaultResponseInstruction = "You are a helpful AI assistant."
	DefaultAgentQuestion       = "Show me the total sales by region"
	AnalystToolName            = "Analyst1"
	SearchToolName             = "Search1"
	SQLExecToolName            = "sql_execution_tool"
)

// DotEnvFileName is looked up from the working directory upwards.
const DotEnvFileName = ".env"

// Config keys, also the environment variable names
const (
	EnvAccountURL          = "SNOWFLAKE_ACCOUNT_URL"
	EnvPAT                 = "SNOWFLAKE_PAT"
	EnvSemanticModelFile   = "SEMANTIC_MODEL_FILE"
	EnvCortexSearchService = "CORTEX_SEARCH_SERVICE"
	EnvUser                = "SNOWFLAKE_USER"
	EnvWarehouse           = "SNOWFLAKE_WAREHOUSE"
	EnvDatabase            = "SNOWFLAKE_DATABASE"
	EnvSchema              = "SNOWFLAKE_SCHEMA"
	EnvRequestTimeout      = "REQUEST_TIMEOUT"
	EnvDebug               = "CORTEX_DEBUG"
	EnvDebugFile           = "DEBUG_FILE"
	EnvRunHistoryPath      = "RUN_HISTORY_PATH"
	EnvRedisURL            = "REDIS_URL"
	EnvMockPort            = "MOCK_PORT"
)

// Search defaults, placeholders until overridden by the environment
const (
	DefaultSearchService = "sales_conversation_search"
	DefaultUser          = "your-username"
	DefaultWarehouse     = "your-warehouse"
	DefaultDatabase      = "your-database"
	DefaultSchema        = "your-schema"
	DefaultMockPort      = "8765"
)

// Run outcome constants
const (
	OutcomeCompleted   = "completed"
	OutcomeStreamEnded = "stream_ended"
	OutcomeHTTPError   = "http_error"
	OutcomeFailed      = "failed"
)

// Command names recorded in run history
const (
	CommandAgent  = "agent"
	CommandSearch = "search"
)
