package outbox

const activityLoggedSchema = `{
  "type": "object",
  "title": "ActivityLogged",
  "properties": {
    "activity_id": {"type": "string"},
    "user_id": {"type": "string"},
    "category": {"type": "string"},
    "duration_minutes": {"type": "integer"},
    "mood_rating": {"type": "integer"},
    "activity_date": {"type": "string", "format": "date"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "user_id", "category", "duration_minutes", "activity_date", "created_at"],
  "additionalProperties": false
}`
