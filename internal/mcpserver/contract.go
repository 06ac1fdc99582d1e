package mcpserver

// ContactFormatContract describes the contact fields that create and update
// tools accept and how list results are shaped.
const ContactFormatContract = `# Rolodex Contact Format

## Fields

| field          | required | notes                                          |
|----------------|----------|------------------------------------------------|
| full_name      | yes      | free text; name search matches any substring   |
| email          | yes      | must be a valid address                        |
| phone_number   | yes      | free text                                      |
| tags           | no       | comma-separated, e.g. "work, climbing"         |

Blank or whitespace-only required fields are rejected before anything is sent.
Tags are trimmed and empty entries are dropped, so "a, ,b" is stored as "a,b".
Tag filtering is exact and case-sensitive: "Work" does not match "work".

## Ids

Ids are assigned by the contacts service and are opaque strings. Use the id
from a list or search result with get_contact, update_contact and
delete_contact.

## Updates

update_contact starts from the cached contact and overwrites only the fields
you pass. Passing tags="" clears every tag.

## Results

List-shaped tools return a view:

` + "```" + `json
{
  "kind": "contacts",
  "contacts": [
    {"id": "1", "full_name": "Amy Chen", "email": "amy@example.com",
     "phone_number": "555-0101", "tags": ["work"]}
  ],
  "tags": ["work"]
}
` + "```" + `

kind is "contacts", "empty" (no contacts to show) or "no_matches" (a search
found nothing; query echoes the search text). Every create, update and delete
re-fetches the full list, so the returned view is the service's current state.
`
