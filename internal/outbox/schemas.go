package outbox

const mealLoggedSchema = `{
  "type": "object",
  "title": "MealLogged",
  "properties": {
    "meal_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "name": {"type": "string"},
    "meal_type": {"type": "string"},
    "day": {"type": "string"},
    "calories": {"type": "integer"},
    "protein_g": {"type": "number"},
    "carbs_g": {"type": "number"},
    "fat_g": {"type": "number"},
    "portion_grams": {"type": "number"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["meal_id", "tenant_id", "user_id", "meal_type", "day", "calories", "protein_g", "carbs_g", "fat_g", "logged_at"],
  "additionalProperties": false
}`

const mealDeletedSchema = `{
  "type": "object",
  "title": "MealDeleted",
  "properties": {
    "meal_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "day": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["meal_id", "tenant_id", "user_id", "day", "occurred_at"],
  "additionalProperties": false
}`

const workoutLoggedSchema = `{
  "type": "object",
  "title": "WorkoutLogged",
  "properties": {
    "workout_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "workout_type": {"type": "string"},
    "duration_min": {"type": "integer"},
    "calories_burned": {"type": "integer"},
    "started_at": {"type": "string", "format": "date-time"}
  },
  "required": ["workout_id", "tenant_id", "user_id", "workout_type", "duration_min", "calories_burned", "started_at"],
  "additionalProperties": false
}`

const goalsUpdatedSchema = `{
  "type": "object",
  "title": "GoalsUpdated",
  "properties": {
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "calories_goal": {"type": "integer"},
    "protein_goal": {"type": "integer"},
    "carbs_goal": {"type": "integer"},
    "fat_goal": {"type": "integer"},
    "manual_override": {"type": "boolean"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "user_id", "calories_goal", "protein_goal", "carbs_goal", "fat_goal", "occurred_at"],
  "additionalProperties": false
}`
