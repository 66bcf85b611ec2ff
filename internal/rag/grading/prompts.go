package grading

import (
	"strings"
	"text/template"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

type promptSet struct {
	system             string
	keyPoints          *template.Template
	grading            *template.Template
	keyPointsMissing   string
	noAssignmentPrompt string
}

type promptData struct {
	AssignmentPrompt string
	ModelAnswer      string
	KeyPoints        string
	StudentAnswer    string
	Excerpts         []gradingModel.SearchHit
}

func parse(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=error").Parse(text))
}

var englishPrompts = promptSet{
	system: "You are an experienced teacher. You grade student answers fairly and consistently against the teacher's model answer.",
	keyPoints: parse("keypoints_en", `Extract the key points that a complete answer to this assignment must contain.

Assignment:
{{.AssignmentPrompt}}

Model answer:
{{.ModelAnswer}}

List each key point on its own line as "<number>. <key point> (<weight> points)".
The weights must add up to 100. Output only the list.`),
	grading: parse("grading_en", `Assignment:
{{.AssignmentPrompt}}

Key points and their weights:
{{.KeyPoints}}

Model answer:
{{.ModelAnswer}}
{{if .Excerpts}}
Parts of the model answer most relevant to this submission:
{{range .Excerpts}}- {{.Content}}
{{end}}{{end}}
Student answer:
{{.StudentAnswer}}

Instructions:
1. For each key point, state whether the student answer covers it completely, partially or not at all.
2. Give each key point a sub-score no higher than its weight and justify it in one or two sentences.
3. Add the sub-scores into a total out of 100.
4. Suggest concrete improvements for the student.

Finish with one line in exactly this format:
Total score: <number>/100`),
	keyPointsMissing:   "Key points could not be extracted. Grade against the model answer directly and weight its main ideas equally.",
	noAssignmentPrompt: "(no assignment prompt was given, infer it from the model answer)",
}

var thaiPrompts = promptSet{
	system: "คุณเป็นครูผู้มีประสบการณ์ ตรวจคำตอบของนักเรียนอย่างยุติธรรมและสม่ำเสมอ โดยเทียบกับคำตอบต้นแบบของครู",
	keyPoints: parse("keypoints_th", `สกัดประเด็นสำคัญที่คำตอบที่สมบูรณ์ของโจทย์นี้ต้องมี

โจทย์:
{{.AssignmentPrompt}}

คำตอบต้นแบบ:
{{.ModelAnswer}}

เขียนประเด็นสำคัญบรรทัดละหนึ่งข้อในรูปแบบ "<ลำดับ>. <ประเด็น> (<น้ำหนัก> คะแนน)"
น้ำหนักรวมกันต้องเท่ากับ 100 ตอบเฉพาะรายการเท่านั้น`),
	grading: parse("grading_th", `โจทย์:
{{.AssignmentPrompt}}

ประเด็นสำคัญและน้ำหนักคะแนน:
{{.KeyPoints}}

คำตอบต้นแบบ:
{{.ModelAnswer}}
{{if .Excerpts}}
ส่วนของคำตอบต้นแบบที่เกี่ยวข้องกับคำตอบนี้มากที่สุด:
{{range .Excerpts}}- {{.Content}}
{{end}}{{end}}
คำตอบของนักเรียน:
{{.StudentAnswer}}

คำสั่ง:
1. ระบุว่าคำตอบของนักเรียนครอบคลุมแต่ละประเด็นครบถ้วน บางส่วน หรือไม่มีเลย
2. ให้คะแนนย่อยแต่ละประเด็นไม่เกินน้ำหนักของประเด็นนั้น พร้อมเหตุผลหนึ่งถึงสองประโยค
3. รวมคะแนนย่อยเป็นคะแนนเต็ม 100
4. เสนอแนะสิ่งที่นักเรียนควรปรับปรุง

ปิดท้ายด้วยบรรทัดเดียวในรูปแบบนี้เท่านั้น:
สรุปคะแนนรวมทั้งหมด: <คะแนน>/100`),
	keyPointsMissing:   "ไม่สามารถสกัดประเด็นสำคัญได้ ให้ตรวจเทียบกับคำตอบต้นแบบโดยตรงและให้น้ำหนักแนวคิดหลักเท่ากัน",
	noAssignmentPrompt: "(ไม่มีโจทย์ ให้อนุมานจากคำตอบต้นแบบ)",
}

func promptsFor(language string) promptSet {
	if language == config.PromptLanguageThai {
		return thaiPrompts
	}
	return englishPrompts
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
