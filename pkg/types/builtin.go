package types

// Common fields shared by every configuration object type.
func commonFields() []Field {
	return []Field{
		{Name: "name", Flags: FieldInternal},
		{Name: "type", Flags: FieldInternal},
		{Name: "package", Flags: FieldInternal},
		{Name: "templates", Flags: FieldInternal},
		{Name: "source_location", Flags: FieldInternal},
		{Name: "version", Flags: FieldConfig},
		{Name: "zone", Flags: FieldConfig},
		{Name: "vars", Flags: FieldConfig},
	}
}

func withCommon(fields ...Field) []Field {
	return append(commonFields(), fields...)
}

var checkableFields = []Field{
	{Name: "display_name", Flags: FieldConfig},
	{Name: "check_command", Flags: FieldConfig},
	{Name: "max_check_attempts", Flags: FieldConfig},
	{Name: "check_period", Flags: FieldConfig},
	{Name: "check_interval", Flags: FieldConfig},
	{Name: "retry_interval", Flags: FieldConfig},
	{Name: "event_command", Flags: FieldConfig},
	{Name: "enable_active_checks", Flags: FieldConfig},
	{Name: "enable_passive_checks", Flags: FieldConfig},
	{Name: "enable_notifications", Flags: FieldConfig},
	{Name: "enable_flapping", Flags: FieldConfig},
	{Name: "enable_perfdata", Flags: FieldConfig},
	{Name: "notes", Flags: FieldConfig},
	{Name: "notes_url", Flags: FieldConfig},
	{Name: "action_url", Flags: FieldConfig},
	{Name: "icon_image", Flags: FieldConfig},
	{Name: "state", Flags: FieldState},
	{Name: "last_check_result", Flags: FieldState},
	{Name: "acknowledgement", Flags: FieldState},
}

// DefaultRegistry returns a registry populated with the built-in monitoring
// object types.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewType("Host", "Hosts", nil, withCommon(append([]Field{
		{Name: "address", Flags: FieldConfig},
		{Name: "address6", Flags: FieldConfig},
		{Name: "groups", Flags: FieldConfig},
	}, checkableFields...)...)...))

	r.Register(NewType("Service", "Services",
		&BangComposer{Parts: []string{"host_name"}},
		withCommon(append([]Field{
			{Name: "host_name", Flags: FieldConfig},
			{Name: "groups", Flags: FieldConfig},
		}, checkableFields...)...)...))

	r.Register(NewType("HostGroup", "HostGroups", nil, withCommon(
		Field{Name: "display_name", Flags: FieldConfig},
		Field{Name: "groups", Flags: FieldConfig},
	)...))

	r.Register(NewType("ServiceGroup", "ServiceGroups", nil, withCommon(
		Field{Name: "display_name", Flags: FieldConfig},
		Field{Name: "groups", Flags: FieldConfig},
	)...))

	r.Register(NewType("CheckCommand", "CheckCommands", nil, withCommon(
		Field{Name: "command", Flags: FieldConfig},
		Field{Name: "arguments", Flags: FieldConfig},
		Field{Name: "env", Flags: FieldConfig},
		Field{Name: "timeout", Flags: FieldConfig},
	)...))

	r.Register(NewType("TimePeriod", "TimePeriods", nil, withCommon(
		Field{Name: "display_name", Flags: FieldConfig},
		Field{Name: "ranges", Flags: FieldConfig},
		Field{Name: "excludes", Flags: FieldConfig},
		Field{Name: "includes", Flags: FieldConfig},
	)...))

	r.Register(NewType("User", "Users", nil, withCommon(
		Field{Name: "display_name", Flags: FieldConfig},
		Field{Name: "email", Flags: FieldConfig},
		Field{Name: "pager", Flags: FieldConfig},
		Field{Name: "groups", Flags: FieldConfig},
		Field{Name: "period", Flags: FieldConfig},
		Field{Name: "enable_notifications", Flags: FieldConfig},
	)...))

	r.Register(NewType("UserGroup", "UserGroups", nil, withCommon(
		Field{Name: "display_name", Flags: FieldConfig},
		Field{Name: "groups", Flags: FieldConfig},
	)...))

	r.Register(NewType("Notification", "Notifications",
		&BangComposer{Parts: []string{"host_name", "service_name"}},
		withCommon(
			Field{Name: "host_name", Flags: FieldConfig},
			Field{Name: "service_name", Flags: FieldConfig},
			Field{Name: "command", Flags: FieldConfig},
			Field{Name: "users", Flags: FieldConfig},
			Field{Name: "user_groups", Flags: FieldConfig},
			Field{Name: "interval", Flags: FieldConfig},
			Field{Name: "period", Flags: FieldConfig},
			Field{Name: "types", Flags: FieldConfig},
			Field{Name: "states", Flags: FieldConfig},
		)...))

	r.Register(NewType("Dependency", "Dependencies",
		&BangComposer{Parts: []string{"child_host_name", "child_service_name"}},
		withCommon(
			Field{Name: "child_host_name", Flags: FieldConfig},
			Field{Name: "child_service_name", Flags: FieldConfig},
			Field{Name: "parent_host_name", Flags: FieldConfig},
			Field{Name: "parent_service_name", Flags: FieldConfig},
			Field{Name: "disable_checks", Flags: FieldConfig},
			Field{Name: "disable_notifications", Flags: FieldConfig},
			Field{Name: "period", Flags: FieldConfig},
			Field{Name: "states", Flags: FieldConfig},
		)...))

	r.Register(NewType("Comment", "Comments",
		&BangComposer{Parts: []string{"host_name", "service_name"}},
		withCommon(
			Field{Name: "host_name", Flags: FieldConfig},
			Field{Name: "service_name", Flags: FieldConfig},
			Field{Name: "author", Flags: FieldConfig},
			Field{Name: "text", Flags: FieldConfig},
			Field{Name: "entry_time", Flags: FieldConfig},
			Field{Name: "entry_type", Flags: FieldConfig},
			Field{Name: "expire_time", Flags: FieldConfig},
			Field{Name: "persistent", Flags: FieldConfig},
		)...))

	r.Register(NewType("Downtime", "Downtimes",
		&BangComposer{Parts: []string{"host_name", "service_name"}},
		withCommon(
			Field{Name: "host_name", Flags: FieldConfig},
			Field{Name: "service_name", Flags: FieldConfig},
			Field{Name: "author", Flags: FieldConfig},
			Field{Name: "comment", Flags: FieldConfig},
			Field{Name: "start_time", Flags: FieldConfig},
			Field{Name: "end_time", Flags: FieldConfig},
			Field{Name: "duration", Flags: FieldConfig},
			Field{Name: "fixed", Flags: FieldConfig},
			Field{Name: "triggered_by", Flags: FieldConfig},
			Field{Name: "entry_time", Flags: FieldConfig},
		)...))

	r.Register(NewType("ScheduledDowntime", "ScheduledDowntimes",
		&BangComposer{Parts: []string{"host_name", "service_name"}},
		withCommon(
			Field{Name: "host_name", Flags: FieldConfig},
			Field{Name: "service_name", Flags: FieldConfig},
			Field{Name: "author", Flags: FieldConfig},
			Field{Name: "comment", Flags: FieldConfig},
			Field{Name: "fixed", Flags: FieldConfig},
			Field{Name: "duration", Flags: FieldConfig},
			Field{Name: "ranges", Flags: FieldConfig},
		)...))

	return r
}
