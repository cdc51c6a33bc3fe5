package gemini

// DefaultPrompt asks for a 25-35 word Vietnamese sales hook, youthful and
// trend-aware, returned as raw text.
const DefaultPrompt = "Hãy viết cho tôi một câu hook bán hàng ngắn gọn, hấp dẫn, bằng tiếng Việt, " +
	"độ dài trong khoảng 25–35 chữ, không được quá ít. Nội dung nhấn mạnh sự cần thiết của sản phẩm, " +
	"mang phong cách trẻ trung, dễ gây chú ý trên mạng xã hội, bắt trend. " +
	"Chỉ xuất ra duy nhất văn bản thô, không được thêm icon, tiêu đề hay nhắc nhở."
