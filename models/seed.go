package models

// SeedPlan returns the built-in application timeline used when a user has
// no saved plan. Each call returns a fresh copy.
func SeedPlan() Plan {
	return Plan{
		{
			ID: "jr-spring", Title: "Junior Year - Spring",
			Items: []TimelineItem{
				{
					ID: "jrs-1", Title: "Standardized Testing (SAT/ACT)", Date: "March - May",
					Description: "Prepare for and take the SAT or ACT. Many students take it for the first time in the spring.",
					Todos: []Todo{
						{ID: "jrs-1-t1", Text: "Register for SAT/ACT", Priority: PriorityHigh, DueDate: "2025-03-15"},
						{ID: "jrs-1-t2", Text: "Study for test", Priority: PriorityMedium},
						{ID: "jrs-1-t3", Text: "Take SAT/ACT", Priority: PriorityHigh, DueDate: "2025-05-03", Notes: "Don't forget photo ID and admission ticket."},
					},
					Status: StatusTodo,
				},
				{
					ID: "jrs-2", Title: "Start College Research", Date: "April - June",
					Description: "Begin researching colleges that interest you. Think about size, location, majors, and campus culture.",
					Todos: []Todo{
						{
							ID: "jrs-2-t1", Text: "Make a list of 15-20 potential colleges", IsCompleted: true, Priority: PriorityMedium,
							Subtasks: []Subtask{
								{ID: "jrs-2-t1-s1", Text: "Research 5 safety schools", IsCompleted: true},
								{ID: "jrs-2-t1-s2", Text: "Research 10 match schools", IsCompleted: true},
							},
						},
					},
					Status: StatusDone,
				},
			},
		},
		{
			ID: "sr-summer", Title: "Summer Before Senior Year",
			Items: []TimelineItem{
				{
					ID: "srs-1", Title: "Brainstorm & Draft Essays", Date: "July - August",
					Description: "Start working on your main college essay (like the Common App essay).",
					Todos: []Todo{
						{ID: "srs-1-t1", Text: "Brainstorm essay topics", Priority: PriorityHigh},
						{ID: "srs-1-t2", Text: "Write first draft of main essay", Priority: PriorityMedium, DueDate: "2024-08-31"},
					},
					Status: StatusTodo,
				},
				{
					ID: "srs-2", Title: "Create a Common App Account", Date: "August 1st",
					Description: "The Common Application opens. Create your account and start filling out the basic sections.",
					Todos: []Todo{
						{ID: "srs-2-t1", Text: "Create Common App account", Priority: PriorityHigh, DueDate: "2024-08-01"},
					},
					Status: StatusTodo,
				},
			},
		},
		{
			ID: "sr-fall", Title: "Senior Year - Fall",
			Items: []TimelineItem{
				{
					ID: "srf-1", Title: "Finalize College List", Date: "September",
					Description: "Narrow your list down to 8-12 colleges, including a mix of safety, match, and reach schools.",
					Todos:       []Todo{{ID: "srf-1-t1", Text: "Finalize list of colleges to apply to", Priority: PriorityHigh}},
					Status:      StatusTodo,
				},
				{
					ID: "srf-2", Title: "Request Letters of Recommendation", Date: "September - October",
					Description: "Ask teachers and your counselor for letters of recommendation. Give them plenty of notice!",
					Todos: []Todo{
						{ID: "srf-2-t1", Text: "Ask 2-3 teachers for recommendations", Priority: PriorityHigh, Notes: "Provide them with my resume and a list of colleges."},
					},
					Status: StatusTodo,
				},
				{
					ID: "srf-3", Title: "Early Application Deadlines", Date: "Nov 1 / Nov 15",
					Description: "Deadlines for Early Decision (ED) and Early Action (EA) are typically in November.",
					Todos:       []Todo{{ID: "srf-3-t1", Text: "Submit Early Decision/Action applications", Priority: PriorityHigh}},
					Status:      StatusTodo,
				},
				{
					ID: "srf-4", Title: "FAFSA Opens", Date: "October 1st",
					Description: "The Free Application for Federal Student Aid (FAFSA) opens. Submit it as early as possible.",
					Todos:       []Todo{{ID: "srf-4-t1", Text: "Complete and submit FAFSA", Priority: PriorityHigh}},
					Status:      StatusTodo,
				},
			},
		},
		{
			ID: "sr-winter", Title: "Senior Year - Winter",
			Items: []TimelineItem{
				{
					ID: "srw-1", Title: "Regular Decision Deadlines", Date: "Jan 1 / Jan 15",
					Description: "Most regular decision application deadlines are in early to mid-January.",
					Todos:       []Todo{{ID: "srw-1-t1", Text: "Submit all remaining applications"}},
					Status:      StatusTodo,
				},
				{
					ID: "srw-2", Title: "Submit Mid-Year Reports", Date: "February",
					Description: "Your counselor will need to send your first semester senior year grades to colleges.",
					Todos:       []Todo{{ID: "srw-2-t1", Text: "Confirm counselor sent mid-year report"}},
					Status:      StatusTodo,
				},
			},
		},
	}
}

// SeedEvents returns the built-in event log used when a user has no saved
// events.
func SeedEvents() []Event {
	return []Event{
		{ID: "evt-1", Title: "SAT Test Date", Date: "2025-05-03", Category: CategoryTesting, Description: "Test center is at Northwood High."},
		{ID: "evt-2", Title: "Common App Opens", Date: "2024-08-01", Category: CategoryDeadline, Description: "Start filling out the main sections."},
		{ID: "evt-3", Title: "Campus Visit: State University", Date: "2025-04-12", Category: CategoryVisit},
		{ID: "evt-4", Title: "FAFSA Opens", Date: "2024-10-01", Category: CategoryDeadline},
		{ID: "evt-5", Title: "Request Letters of Rec", Date: "2024-09-15", Category: CategoryToDo, Description: "Ask Mr. Smith and Ms. Jones."},
		{ID: "evt-6", Title: "Early Action Deadline", Date: "2024-11-01", Category: CategoryDeadline},
	}
}
