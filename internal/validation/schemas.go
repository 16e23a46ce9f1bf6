package validation

import "weekly-agenda-api/internal/model"

func requiredText(field string) Field {
	msg := "The " + field + " is required!"
	return Field{
		Name:     field,
		Rules:    []Rule{String(), NotEmpty(), NoNull()},
		Messages: map[string]string{CodeRequired: msg, CodeEmpty: msg},
	}
}

var RegisterSchema = Schema{
	Name: "register",
	Fields: []Field{
		requiredText("firstName"),
		requiredText("lastName"),
		{
			Name:     "birthDate",
			Rules:    []Rule{Date()},
			Messages: map[string]string{CodeRequired: "The birthDate is required!"},
		},
		requiredText("city"),
		requiredText("country"),
		{
			Name:  "email",
			Rules: []Rule{String(), NotEmpty(), NoNull(), Email()},
			Messages: map[string]string{
				CodeRequired: "The email is required!",
				CodeEmail:    "Invalid email format",
			},
		},
		{
			Name:  "password",
			Rules: []Rule{String(), NotEmpty(), MinLength(6)},
			Messages: map[string]string{
				CodeRequired: "The password is required!",
				CodeMin:      "The password must be at least 6 characters long",
			},
		},
		{
			Name:  "confirmPassword",
			Rules: []Rule{EqualsField("password")},
			Messages: map[string]string{
				CodeRequired: "The confirmPassword is required!",
				CodeOnly:     "Passwords do not match",
			},
		},
	},
}

var LoginSchema = Schema{
	Name: "login",
	Fields: []Field{
		{
			Name:  "email",
			Rules: []Rule{String(), NotEmpty(), NoNull(), Email()},
			Messages: map[string]string{
				CodeRequired: "The email is required!",
				CodeEmail:    "Invalid email format",
			},
		},
		{
			Name:     "password",
			Rules:    []Rule{String(), NotEmpty()},
			Messages: map[string]string{CodeRequired: "The password is required!"},
		},
	},
}

var CreateEventSchema = Schema{
	Name: "createEvent",
	Fields: []Field{
		{Name: "description", Rules: []Rule{String(), NotEmpty(), NoNull()}},
		{Name: "dayOfWeek", Rules: []Rule{OneOf(model.Weekdays...)}},
		{Name: "userId", Rules: []Rule{String(), NotEmpty(), NoNull()}},
	},
}

// QueryEventSchema validates the list filters. Both are optional and may be
// given at most once.
var QueryEventSchema = Schema{
	Name: "queryEvent",
	Fields: []Field{
		{Name: "dayOfWeek", Optional: true, Rules: []Rule{String(), OneOf(model.Weekdays...)}},
		{Name: "description", Optional: true, Rules: []Rule{String(), NotEmpty(), NoNull()}},
	},
}
