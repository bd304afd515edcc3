package guard

// defaultRules is the built-in blacklist, evaluated in order. Reviewed and
// extended whenever a new bypass phrase class is discovered; prefer adding a
// rule over widening an existing pattern.
var defaultRules = []Rule{
	// Statement chaining into DDL/DML.
	{Name: "chained-ddl", Pattern: `;\s*(drop|delete|update|insert|alter|create|truncate|exec|execute)`},
	{Name: "chained-select", Pattern: `;\s*select`},

	// Comment sequences used to truncate the generated statement.
	{Name: "comment-dash", Pattern: `--`},
	{Name: "comment-block", Pattern: `/\*|\*/`},

	// System schema and stored-procedure references.
	{Name: "system-schema", Pattern: `xp_|sys\.|information_schema|master\.|tempdb\.|msdb\.`},

	// Probing for the ownership column by name.
	{Name: "ownership-probe", Pattern: `owner_id|ownerid|user_id|userid`},

	// Raw SQL smuggled inside a natural-language intent.
	{Name: "embedded-select", Pattern: `select\s+.*\s+from`},
	{Name: "set-operation", Pattern: `union|concat`},
	{Name: "destructive-statement", Pattern: `drop\s+table|delete\s+from`},

	// Privilege-bypass phrases, English and Chinese.
	{Name: "privilege-bypass", Pattern: `ignore\s+permission|bypass\s+security|忽略权限|绕过权限|hack`},

	// Encoding tricks used to sneak keywords past keyword filters.
	{Name: "encoding-probe", Pattern: `char\s*\(|ascii|unicode\s*\(|\bhex\b|base64`},
}
