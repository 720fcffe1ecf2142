package ai

// ClassifyPrompt routes a question into one of three categories.
// Arguments: recent conversation, question.
const ClassifyPrompt = `
# Task Context
You route questions asked about a professional network of people and their work and study connections.

# Background Data
Recent conversation:
%s

# Detailed Task Description & Rules
Pick exactly one category for the question:
- "graph_query": the answer depends on the structure of the network, e.g. how two people are connected, who is most connected or influential, who bridges groups, who is similar to someone, whom someone should meet, or showing a person on the graph.
- "relational_query": the answer is a lookup or aggregation over people's profile records, e.g. counting people, listing who works at a company, filtering by title or institution.
- "knowledge_qa": open questions about people's backgrounds, expertise or interests that need reading their profiles.
- Use the conversation only to understand follow-up questions.

# Immediate Task Description or Request
Question: "%s"

# Output Formatting
Return a JSON object: {"category": "<graph_query|relational_query|knowledge_qa>"}
`

// ExtractIntentPrompt turns a graph question into an operation and entities.
// Arguments: current user name, known names, recent conversation, question.
const ExtractIntentPrompt = `
# Task Context
You analyse questions for a graph-based network assistant. The person asking is "%s".

# Background Data
People in the network:
%s

Recent conversation:
%s

# Detailed Task Description & Rules
1. Determine the operation:
   - "find_path": how two people are connected. If only one person is mentioned, the path starts at the person asking.
   - "rank_nodes": who is most connected or influential, optionally within a topic.
   - "recommend_person": whom the person asking should meet next.
   - "find_similar": people similar to someone.
   - "find_bridge": people who connect many others.
   - "select_node": show or highlight specific people.
   - "find_potential_connections": people someone could be introduced to through similar people.
   - "general": anything else about the network.
2. Extract the people mentioned. Match each against the list above and use the exact name from the list when there is a close match. Use "me" when the person asking refers to themselves.
3. Put a topic or field of expertise into parameters.topic, a requested number of results into parameters.limit and a connection kind (WORK or STUDY) into parameters.connection_type. Leave them empty otherwise.

# Immediate Task Description or Request
Question: "%s"

# Output Formatting
Return a JSON object:
{
  "operation": "<operation>",
  "entities": ["<name>"],
  "parameters": {"topic": "", "limit": 0, "connection_type": ""}
}
`

// GraphAnswerPrompt explains a structured graph result.
// Arguments: question, operation, result JSON.
const GraphAnswerPrompt = `
# Task Context
You are a network analysis assistant explaining the result of a graph query to the person who asked.

# Background Data
Question: "%s"
Operation: %s
Result:
%s

# Detailed Task Description & Rules
- Base the answer only on the result. Do not invent people, connections or numbers.
- Mention people by name and explain briefly why they appear, e.g. their number of connections, expertise or shared contacts.
- If the result carries a message, convey it.
- Keep the answer short and conversational. Plain text only.
`

// KnowledgePrompt answers open questions from retrieved person profiles.
const KnowledgePrompt = `
# Task Context
You answer questions about the people of a professional network.

# Detailed Task Description & Rules
- Use the profiles given in the context message as your only source.
- If the profiles do not contain the answer, say that you could not find it.
- Name the people your answer is based on.
- Keep the answer concise. Plain text only.
`

// KnowledgeContextPrompt carries the retrieved profiles.
// Arguments: profiles.
const KnowledgeContextPrompt = `
Profiles relevant to the next question:
%s
`

// SQLGenerationPrompt asks for a read-only query over the profile tables.
// Arguments: schema, question.
const SQLGenerationPrompt = `
# Task Context
You are a PostgreSQL expert.

# Background Data
Schema:
%s

# Detailed Task Description & Rules
- Write a single PostgreSQL SELECT statement that answers the question.
- Never modify data. No semicolons, no comments.
- Prefer ILIKE for name, company, title and institution filters.
- Use "= ANY(expertise_areas)" or array_to_string for array columns.

# Immediate Task Description or Request
Question: "%s"

# Output Formatting
Return a JSON object: {"sql": "<query>"}
`

// SQLAnswerPrompt turns query rows into an answer.
// Arguments: question, rows as JSON.
const SQLAnswerPrompt = `
# Task Context
A user asked: "%s"

# Background Data
A SQL query was run against the network database and returned:
%s

# Detailed Task Description & Rules
Based only on the data, give a concise and helpful answer. If the data is empty, say that you could not find the information in the database. Do not invent information. Plain text only.
`
