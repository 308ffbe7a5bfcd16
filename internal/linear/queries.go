package linear

const issueFields = `
	id
	identifier
	title
	description
	priority
	estimate
	createdAt
	updatedAt
	state { name }
	assignee { name }
	project { name }
	cycle { name }
	team { id name }
	labels { nodes { name } }
`

const commentFields = `
		nodes { body createdAt user { name } }
		pageInfo { hasNextPage endCursor }
`

const issueQuery = `query Issue($id: String!, $first: Int!) {
	issue(id: $id) {` + issueFields + `
		comments(first: $first) {` + commentFields + `}
	}
}`

const issueCommentsQuery = `query IssueComments($id: String!, $first: Int!, $after: String) {
	issue(id: $id) {
		comments(first: $first, after: $after) {` + commentFields + `}
	}
}`

const teamIssuesQuery = `query TeamIssues($id: String!, $first: Int!, $after: String) {
	team(id: $id) {
		issues(first: $first, after: $after) {
			nodes {` + issueFields + `}
			pageInfo { hasNextPage endCursor }
		}
	}
}`

const commentCreateMutation = `mutation CommentCreate($input: CommentCreateInput!) {
	commentCreate(input: $input) { success }
}`
