package pipeline

import (
	"strings"

	"github.com/dvloznov/expense-tracker/internal/domain"
)

// taxonomyList renders the fixed category set as "Food, Transport, ...".
func taxonomyList() string {
	return strings.Join(domain.TaxonomyNames(), ", ")
}

const amountGuidance = "Amounts are Indonesian Rupiah unless stated otherwise. Read shorthand as follows:\n" +
	"- \"15rb\" or \"15 ribu\" = 15000\n" +
	"- \"2.5k\" = 2500\n" +
	"- \"Rp 15.000\" = 15000 (the dot groups thousands)\n" +
	"Return the amount as a plain number without currency symbol or separators.\n"

// buildTextPrompt asks the model to read one free-form expense statement.
func buildTextPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze this text and extract expense information. The text may be Indonesian or English and might be:\n")
	b.WriteString("1. A description of an expense (e.g. \"kopi 15rb\" or \"Bought coffee for 15k\")\n")
	b.WriteString("2. A receipt or bill text\n")
	b.WriteString("3. A simple expense note\n\n")
	b.WriteString("Extract the following information and return it in JSON format:\n")
	b.WriteString("{\n")
	b.WriteString("  \"amount\": extracted amount as a number (without currency symbol),\n")
	b.WriteString("  \"description\": \"brief description of the expense\",\n")
	b.WriteString("  \"category\": \"one of: " + taxonomyList() + "\",\n")
	b.WriteString("  \"date\": \"date if found (YYYY-MM-DD format) or null\",\n")
	b.WriteString("  \"merchant\": \"store/merchant name if mentioned, or null\"\n")
	b.WriteString("}\n\n")
	b.WriteString(amountGuidance)
	b.WriteString("\nIf no clear expense information is found, still suggest the most reasonable category.\n\n")
	b.WriteString("Text to analyze: \"" + text + "\"\n")
	return b.String()
}

// buildImagePrompt asks the model to read a receipt or photo and transcribe it.
func buildImagePrompt() string {
	var b strings.Builder
	b.WriteString("Analyze this image and extract any expense-related information. Look for:\n")
	b.WriteString("1. Amount/price (numbers with currency symbols)\n")
	b.WriteString("2. Description of items or services\n")
	b.WriteString("3. Date (if visible)\n")
	b.WriteString("4. Merchant/store name\n")
	b.WriteString("5. Category\n\n")
	b.WriteString("Return the information in this JSON format:\n")
	b.WriteString("{\n")
	b.WriteString("  \"amount\": extracted amount as a number (without currency symbol),\n")
	b.WriteString("  \"description\": \"brief description of the expense\",\n")
	b.WriteString("  \"category\": \"one of: " + taxonomyList() + "\",\n")
	b.WriteString("  \"date\": \"date if found (YYYY-MM-DD format) or null\",\n")
	b.WriteString("  \"merchant\": \"store/merchant name if visible, or null\",\n")
	b.WriteString("  \"raw_text\": \"all text found in the image\"\n")
	b.WriteString("}\n\n")
	b.WriteString(amountGuidance)
	b.WriteString("\nIf no expense information is found, return:\n")
	b.WriteString("{\n")
	b.WriteString("  \"amount\": null,\n")
	b.WriteString("  \"description\": \"" + NoExpenseFoundDescription + "\",\n")
	b.WriteString("  \"category\": \"" + string(domain.CategoryOther) + "\",\n")
	b.WriteString("  \"date\": null,\n")
	b.WriteString("  \"merchant\": null,\n")
	b.WriteString("  \"raw_text\": \"extracted text from image\"\n")
	b.WriteString("}\n\n")
	b.WriteString("Return ONLY the JSON object. Do NOT wrap it in code fences.\n")
	return b.String()
}
